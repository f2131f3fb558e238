package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatterLayout(t *testing.T) {
	f := &CustomFormatter{SystemName: "task-manager"}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: TEST, Description: hello",
		Data:    logrus.Fields{"taskId": "abc"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	line := string(out)

	for _, want := range []string{
		"Date: 2024-01-01, Time: 12:00:00",
		"Event Source: task-manager",
		"Event Type: WARNING",
		"Message: Event ID: TEST, Description: hello",
		"taskId=abc",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("formatted line %q does not contain %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("formatted line must end with a newline")
	}
}
