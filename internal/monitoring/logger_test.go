package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("message")
	if !called {
		t.Error("custom logger was not called")
	}

	// nil installs a no-op that must neither panic nor call the previous
	// logger.
	called = false
	SetLogger(nil)
	Logf("message")
	if called {
		t.Error("no-op logger should not invoke the previous callback")
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	Logf("message: %s", "value")
}
