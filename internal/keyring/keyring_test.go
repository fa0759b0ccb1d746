package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/habits?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(SecretTelegram, "123:abc"); err != nil {
		t.Fatalf("Set(telegram) failed: %v", err)
	}
	if _, err := Get(SecretDatabase); err != ErrNotFound {
		t.Errorf("Get(database) error = %v, want %v", err, ErrNotFound)
	}

	token, err := Get(SecretTelegram)
	if err != nil {
		t.Fatalf("Get(telegram) failed: %v", err)
	}
	if token != "123:abc" {
		t.Errorf("Get(telegram) = %q, want %q", token, "123:abc")
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = DeleteConnectionString()

	if _, err := GetConnectionString(); err != ErrNotFound {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(SecretTelegram, "token"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(SecretTelegram); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(SecretTelegram); err != ErrNotFound {
		t.Errorf("Get() after Delete() error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete(SecretTelegram); err != ErrNotFound {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestParseSecret(t *testing.T) {
	tests := []struct {
		in      string
		want    Secret
		wantErr bool
	}{
		{in: "database", want: SecretDatabase},
		{in: "db", want: SecretDatabase},
		{in: "telegram", want: SecretTelegram},
		{in: "telegram-bot-token", want: SecretTelegram},
		{in: "slack", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSecret(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSecret(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSecret(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with the mock keyring")
	}
}
