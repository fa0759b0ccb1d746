package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/validation"
)

type fixture struct {
	t       *testing.T
	store   *memStore
	tracker *Tracker
	now     time.Time
}

func newFixture(t *testing.T, now string, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{t: t, store: newMemStore()}
	f.setNow(now)
	opts = append([]Option{
		WithClock(func() time.Time { return f.now }),
		WithLocation(time.UTC),
	}, opts...)
	f.tracker = New(f.store, opts...)
	return f
}

func (f *fixture) setNow(value string) {
	f.t.Helper()
	now, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(f.t, err)
	f.now = now
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return d
}

func (f *fixture) habit(name string, days ...time.Weekday) models.Habit {
	f.t.Helper()
	h, err := f.tracker.CreateHabit(HabitInput{Name: name, Days: streak.DaySetOf(days...)})
	require.NoError(f.t, err)
	return h
}

func (f *fixture) toggle(habitID, value string) ToggleResult {
	f.t.Helper()
	res, err := f.tracker.ToggleCompletion(habitID, day(f.t, value))
	require.NoError(f.t, err)
	return res
}

func (f *fixture) milestone(habitID string) streak.Milestone {
	f.t.Helper()
	m, err := f.store.GetMilestone(habitID)
	require.NoError(f.t, err)
	return streak.Milestone{WeekStreak: m.WeekStreak, BadgesEarned: m.BadgesEarned}
}

func TestCreateHabit(t *testing.T) {
	f := newFixture(t, "2026-10-21 10:00")

	h, err := f.tracker.CreateHabit(HabitInput{
		Name:        "  Read  ",
		Description: " ten pages ",
		Days:        streak.DaySetOf(time.Monday, time.Friday),
		Time:        "7:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, "ten pages", h.Description)
	assert.NotEmpty(t, h.ID)

	days, err := f.store.ListReminderDays(h.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, days)

	reminders, err := f.store.GetReminders(h.ID)
	require.NoError(t, err)
	for _, r := range reminders {
		assert.Equal(t, "07:30", r.Time)
	}

	assert.Equal(t, streak.Milestone{}, f.milestone(h.ID), "new habits start with a zero milestone")
}

func TestCreateHabitValidation(t *testing.T) {
	f := newFixture(t, "2026-10-21 10:00")
	f.habit("Read", time.Monday)

	_, err := f.tracker.CreateHabit(HabitInput{Name: " ", Days: streak.DaySetOf(time.Monday)})
	assert.ErrorIs(t, err, validation.ErrEmptyName)

	_, err = f.tracker.CreateHabit(HabitInput{Name: "Walk"})
	assert.ErrorIs(t, err, validation.ErrNoDays)

	_, err = f.tracker.CreateHabit(HabitInput{Name: "Walk", Days: streak.DaySetOf(time.Monday), Time: "25:00"})
	assert.ErrorIs(t, err, validation.ErrInvalidTime)

	_, err = f.tracker.CreateHabit(HabitInput{Name: "Read", Days: streak.DaySetOf(time.Tuesday)})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestToggleCompletionReachesWeeklyTarget(t *testing.T) {
	f := newFixture(t, "2026-10-23 12:00") // Friday
	h := f.habit("Stretch", time.Monday, time.Wednesday, time.Friday)

	res := f.toggle(h.ID, "2026-10-19")
	assert.True(t, res.Completed)
	assert.False(t, res.StreakChanged)

	res = f.toggle(h.ID, "2026-10-21")
	assert.False(t, res.StreakChanged)
	assert.Equal(t, streak.Milestone{}, f.milestone(h.ID))

	res = f.toggle(h.ID, "2026-10-23")
	assert.True(t, res.Completed)
	assert.True(t, res.StreakChanged)
	assert.True(t, res.BadgeEarned)
	assert.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, res.Milestone)
	assert.Equal(t, res.Milestone, f.milestone(h.ID))

	// un-marking on the last scheduled day takes the week back
	res = f.toggle(h.ID, "2026-10-23")
	assert.False(t, res.Completed)
	assert.True(t, res.StreakChanged)
	assert.Equal(t, streak.Milestone{}, f.milestone(h.ID))
}

func TestToggleExtraCompletionDoesNotCountTwice(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00") // Wednesday
	h := f.habit("Journal", time.Monday)

	f.toggle(h.ID, "2026-10-19")
	assert.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, f.milestone(h.ID))

	res := f.toggle(h.ID, "2026-10-20")
	assert.True(t, res.Completed)
	assert.False(t, res.StreakChanged)
	assert.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, f.milestone(h.ID))
}

func TestToggleRemovalAwayFromLastScheduledDay(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00") // Wednesday
	h := f.habit("Run", time.Monday, time.Tuesday)

	f.toggle(h.ID, "2026-10-19")
	f.toggle(h.ID, "2026-10-20")
	require.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, f.milestone(h.ID))

	res := f.toggle(h.ID, "2026-10-20")
	assert.False(t, res.Completed)
	assert.False(t, res.StreakChanged)
	assert.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, f.milestone(h.ID))
}

func TestToggleKeepsBadgeEarnedAboveTier(t *testing.T) {
	f := newFixture(t, "2026-10-19 12:00") // Monday
	h := f.habit("Floss", time.Monday)
	require.NoError(t, f.store.UpsertMilestone(h.ID, 11, 2))

	res := f.toggle(h.ID, "2026-10-19")
	assert.Equal(t, streak.Milestone{WeekStreak: 12, BadgesEarned: 3}, res.Milestone)

	res = f.toggle(h.ID, "2026-10-19")
	assert.Equal(t, streak.Milestone{WeekStreak: 11, BadgesEarned: 2}, res.Milestone)

	require.NoError(t, f.store.UpsertMilestone(h.ID, 11, 4))
	f.toggle(h.ID, "2026-10-19")
	res = f.toggle(h.ID, "2026-10-19")
	assert.Equal(t, streak.Milestone{WeekStreak: 11, BadgesEarned: 4}, res.Milestone,
		"a badge above the old tier survives the removal")
}

func TestToggleFutureDay(t *testing.T) {
	f := newFixture(t, "2026-10-21 23:59")
	h := f.habit("Read", time.Thursday)

	_, err := f.tracker.ToggleCompletion(h.ID, day(t, "2026-10-22"))
	assert.ErrorIs(t, err, ErrFutureDay)

	_, err = f.store.GetCompletion(h.ID, "2026-10-22")
	assert.Error(t, err)
}

func TestTogglePreviousWeekOnlyFlipsRecord(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00")
	h := f.habit("Read", time.Monday)
	before := f.store.upserts

	res := f.toggle(h.ID, "2026-10-12")
	assert.True(t, res.Completed)
	assert.False(t, res.StreakChanged)
	assert.Equal(t, before, f.store.upserts)

	_, err := f.store.GetCompletion(h.ID, "2026-10-12")
	assert.NoError(t, err)
}

func TestToggleUnknownHabit(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00")

	_, err := f.tracker.ToggleCompletion("missing", day(t, "2026-10-21"))
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestToggleInvalidMilestoneWritesNothing(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00")
	h := f.habit("Read", time.Wednesday)
	f.store.milestones[h.ID] = models.Milestone{HabitID: h.ID, WeekStreak: 2, BadgesEarned: 9}

	_, err := f.tracker.ToggleCompletion(h.ID, day(t, "2026-10-21"))
	assert.ErrorIs(t, err, streak.ErrInvalidInput)

	_, err = f.store.GetCompletion(h.ID, "2026-10-21")
	assert.Error(t, err, "no completion is written when the engine rejects the state")
}

func TestToggleMilestoneFailureRollsBackCompletion(t *testing.T) {
	f := newFixture(t, "2026-10-23 12:00") // Friday
	h := f.habit("Swim", time.Monday, time.Friday)
	f.toggle(h.ID, "2026-10-19")
	require.NoError(t, f.store.UpsertMilestone(h.ID, 2, 1))

	f.store.failUpserts = 1
	_, err := f.tracker.ToggleCompletion(h.ID, day(t, "2026-10-23"))
	require.Error(t, err)

	_, err = f.store.GetCompletion(h.ID, "2026-10-23")
	assert.Error(t, err, "the completion is not kept when the milestone write fails")
	assert.Equal(t, streak.Milestone{WeekStreak: 2, BadgesEarned: 1}, f.milestone(h.ID))

	// a retry is still an add and crosses the weekly target once
	res := f.toggle(h.ID, "2026-10-23")
	assert.True(t, res.Completed)
	assert.Equal(t, streak.Milestone{WeekStreak: 3, BadgesEarned: 2}, res.Milestone)
	assert.Equal(t, streak.Milestone{WeekStreak: 3, BadgesEarned: 2}, f.milestone(h.ID))
}

// Once the last scheduled day has passed a removal leaves the streak alone,
// so unmarking and re-marking a day recounts the week.
func TestToggleAfterLastScheduledDayRecountsWeek(t *testing.T) {
	f := newFixture(t, "2026-10-24 12:00") // Saturday
	h := f.habit("Read", time.Monday, time.Wednesday)

	f.toggle(h.ID, "2026-10-19")
	res := f.toggle(h.ID, "2026-10-21")
	require.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, res.Milestone)

	res = f.toggle(h.ID, "2026-10-21")
	assert.False(t, res.Completed)
	assert.False(t, res.StreakChanged)
	assert.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, f.milestone(h.ID))

	res = f.toggle(h.ID, "2026-10-21")
	assert.True(t, res.StreakChanged)
	assert.Equal(t, streak.Milestone{WeekStreak: 2, BadgesEarned: 1}, f.milestone(h.ID))
}

func TestConcurrentTogglesAreSerialized(t *testing.T) {
	f := newFixture(t, "2026-10-24 12:00") // Saturday
	h := f.habit("Meditate",
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday)
	for _, d := range []string{"2026-10-18", "2026-10-19", "2026-10-20", "2026-10-21", "2026-10-22", "2026-10-23"} {
		require.NoError(t, f.store.AddCompletion(models.Completion{ID: d, HabitID: h.ID, Day: d}))
	}

	const toggles = 20
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.tracker.ToggleCompletion(h.ID, day(t, "2026-10-24")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("toggle failed: %v", err)
	}

	_, err := f.store.GetCompletion(h.ID, "2026-10-24")
	assert.Error(t, err, "an even number of toggles leaves the day unmarked")
	assert.Equal(t, streak.Milestone{}, f.milestone(h.ID))
	assert.Empty(t, f.tracker.locks.locks, "locks are released")
}

func TestRunRollover(t *testing.T) {
	f := newFixture(t, "2026-10-21 00:05") // Wednesday
	mwf := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	alpha := f.habit("Alpha", mwf...)
	require.NoError(t, f.store.UpsertMilestone(alpha.ID, 5, 2))
	require.NoError(t, f.store.AddCompletion(models.Completion{ID: "a", HabitID: alpha.ID, Day: "2026-10-14"}))

	bravo := f.habit("Bravo", mwf...)
	require.NoError(t, f.store.UpsertMilestone(bravo.ID, 3, 2))
	require.NoError(t, f.store.AddCompletion(models.Completion{ID: "b", HabitID: bravo.ID, Day: "2026-10-19"}))

	charlie := f.habit("Charlie", time.Sunday)
	require.NoError(t, f.store.UpsertMilestone(charlie.ID, 1, 1))

	f.habit("Delta", time.Tuesday)

	report, err := f.tracker.RunRollover(false)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-21", report.Day)
	assert.False(t, report.Skipped)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, []string{"Alpha", "Charlie"}, report.Reset)

	assert.Equal(t, streak.Milestone{WeekStreak: 0, BadgesEarned: 2}, f.milestone(alpha.ID))
	assert.Equal(t, streak.Milestone{WeekStreak: 3, BadgesEarned: 2}, f.milestone(bravo.ID))
	assert.Equal(t, streak.Milestone{WeekStreak: 0, BadgesEarned: 1}, f.milestone(charlie.ID))

	settings, err := f.store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "2026-10-21", settings.LastRollover)

	again, err := f.tracker.RunRollover(false)
	require.NoError(t, err)
	assert.True(t, again.Skipped)

	forced, err := f.tracker.RunRollover(true)
	require.NoError(t, err)
	assert.Equal(t, 1, forced.Checked)
	assert.Empty(t, forced.Reset)
}

func TestRunRolloverNextDay(t *testing.T) {
	f := newFixture(t, "2026-10-21 00:05")
	h := f.habit("Read", time.Tuesday)
	require.NoError(t, f.store.UpsertMilestone(h.ID, 4, 2))
	require.NoError(t, f.store.AddCompletion(models.Completion{ID: "c", HabitID: h.ID, Day: "2026-10-20"}))

	report, err := f.tracker.RunRollover(false)
	require.NoError(t, err)
	assert.Empty(t, report.Reset)

	f.setNow("2026-10-28 00:05")
	report, err = f.tracker.RunRollover(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Read"}, report.Reset, "missing the next Tuesday breaks the streak")
}

func TestUpdateHabitReplacesReminders(t *testing.T) {
	obs := &recordingObserver{}
	f := newFixture(t, "2026-10-21 12:00", WithObserver(obs))
	h := f.habit("Read", time.Monday, time.Tuesday)
	other := f.habit("Walk", time.Monday)
	require.NoError(t, f.store.UpsertMilestone(h.ID, 6, 2))

	updated, err := f.tracker.UpdateHabit(h.ID, HabitInput{
		Name: "Read more",
		Days: streak.DaySetOf(time.Saturday),
		Time: "20:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Read more", updated.Name)

	days, err := f.store.ListReminderDays(h.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, days)
	assert.Equal(t, streak.Milestone{WeekStreak: 6, BadgesEarned: 2}, f.milestone(h.ID))

	_, err = f.tracker.UpdateHabit(h.ID, HabitInput{Name: "Walk", Days: streak.DaySetOf(time.Monday)})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = f.tracker.UpdateHabit(other.ID, HabitInput{Name: "Walk", Days: streak.DaySetOf(time.Sunday)})
	assert.NoError(t, err, "keeping its own name is fine")

	_, err = f.tracker.UpdateHabit("missing", HabitInput{Name: "X", Days: streak.DaySetOf(time.Sunday)})
	assert.ErrorIs(t, err, ErrHabitNotFound)

	assert.Equal(t, []string{"Read", "Walk", "Read more", "Walk"}, obs.saved)
}

func TestDeleteHabit(t *testing.T) {
	obs := &recordingObserver{}
	f := newFixture(t, "2026-10-21 12:00", WithObserver(obs))
	h := f.habit("Read", time.Wednesday)
	f.toggle(h.ID, "2026-10-21")

	require.NoError(t, f.tracker.DeleteHabit(h.ID))
	assert.Equal(t, []string{h.ID}, obs.deleted)

	_, err := f.store.GetMilestone(h.ID)
	assert.Error(t, err)
	assert.Empty(t, f.store.completions[h.ID])

	assert.ErrorIs(t, f.tracker.DeleteHabit(h.ID), ErrHabitNotFound)
}

func TestFindHabit(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00")
	h := f.habit("Morning Run", time.Monday)

	for _, ref := range []string{h.ID, "Morning Run", "morning run", "  MORNING RUN "} {
		got, err := f.tracker.FindHabit(ref)
		require.NoError(t, err, ref)
		assert.Equal(t, h.ID, got.ID)
	}

	_, err := f.tracker.FindHabit("Evening Run")
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestTodayHabits(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00") // Wednesday

	create := func(name, at string, days ...time.Weekday) models.Habit {
		h, err := f.tracker.CreateHabit(HabitInput{Name: name, Days: streak.DaySetOf(days...), Time: at})
		require.NoError(t, err)
		return h
	}
	create("Stretch", "", time.Wednesday)
	create("Read", "07:00", time.Wednesday, time.Friday)
	create("Run", "06:00", time.Monday)
	journal := create("Journal", "06:00", time.Wednesday)
	f.toggle(journal.ID, "2026-10-21")

	items, err := f.tracker.TodayHabits()
	require.NoError(t, err)

	var names, times []string
	for _, it := range items {
		names = append(names, it.Habit.Name)
		times = append(times, it.Time)
	}
	assert.Equal(t, []string{"Read", "Stretch", "Journal"}, names)
	assert.Equal(t, []string{"07:00", "09:00", "06:00"}, times)
	assert.True(t, items[2].Completed)
}

func TestMilestonesView(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00")
	h := f.habit("Read", time.Monday)
	require.NoError(t, f.store.UpsertMilestone(h.ID, 12, 3))

	views, err := f.tracker.Milestones()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Read", views[0].HabitName)
	assert.Equal(t, 3, views[0].CurrentTier)
	assert.Equal(t, [streak.MaxTier]int{100, 100, 100, 46, 23}, views[0].Progress)
}

func TestDetail(t *testing.T) {
	f := newFixture(t, "2026-10-21 12:00")
	h, err := f.tracker.CreateHabit(HabitInput{Name: "Read", Days: streak.DaySetOf(time.Monday, time.Wednesday), Time: "08:00"})
	require.NoError(t, err)
	f.toggle(h.ID, "2026-10-19")

	d, err := f.tracker.Detail(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mon,Wed", d.Frequency.String())
	assert.Equal(t, "08:00", d.Time)
	assert.Equal(t, 1, d.WeekCompletions)
	assert.False(t, d.WeekDone())

	f.toggle(h.ID, "2026-10-21")
	list, err := f.tracker.ListHabits()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].WeekDone())
	assert.Equal(t, streak.Milestone{WeekStreak: 1, BadgesEarned: 1}, list[0].Milestone)
}

type recordingObserver struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (o *recordingObserver) HabitSaved(h models.Habit, _ []models.Reminder) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saved = append(o.saved, h.Name)
}

func (o *recordingObserver) HabitDeleted(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deleted = append(o.deleted, id)
}
