package notifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	err   error
	calls []string
}

func (r *recordingNotifier) Notify(title, body string) error {
	r.calls = append(r.calls, formatText(title, body))
	return r.err
}

func TestMultiDeliversToAll(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}

	require.NoError(t, Multi{first, second}.Notify("Run", "5k"))
	assert.Equal(t, []string{"Run\n5k"}, first.calls)
	assert.Equal(t, []string{"Run\n5k"}, second.calls)
}

func TestMultiPartialFailure(t *testing.T) {
	broken := &recordingNotifier{err: errors.New("offline")}
	ok := &recordingNotifier{}

	assert.NoError(t, Multi{broken, ok}.Notify("Run", ""))
	assert.Len(t, ok.calls, 1)
}

func TestMultiAllFail(t *testing.T) {
	a := &recordingNotifier{err: errors.New("offline")}
	b := &recordingNotifier{err: errors.New("unauthorized")}

	err := Multi{a, b}.Notify("Run", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestMultiEmpty(t *testing.T) {
	assert.ErrorIs(t, Multi{}.Notify("Run", ""), ErrNotConfigured)
}

func TestName(t *testing.T) {
	assert.Equal(t, "tray", Name(NewTray()))
	assert.Equal(t, "telegram", Name(&Telegram{}))
	assert.Equal(t, "log", Name(Log{}))
	assert.Equal(t, "multi", Name(Multi{}))
}

func TestLogNeverFails(t *testing.T) {
	assert.NoError(t, Log{}.Notify("Run", "5k"))
}
