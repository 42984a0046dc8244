package notification

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"FlowTagger/internal/config"
	"FlowTagger/internal/model"

	"gotest.tools/v3/assert"
)

func testReport() *model.Report {
	return &model.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC),
		Tags:        []model.TagCount{{Tag: "web", Count: 4}, {Tag: model.Untagged, Count: 1}},
	}
}

func TestEmailNotifier_Send(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{
		Host: "mail.example.com",
		Port: 2525,
		From: "flowtagger@example.com",
		To:   "a@example.com, b@example.com,",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	assert.NilError(t, NotifyReport(n, "FlowTagger run summary", testReport(), 10))
	assert.Equal(t, gotAddr, "mail.example.com:2525")
	assert.Equal(t, gotFrom, "flowtagger@example.com")
	assert.DeepEqual(t, gotTo, []string{"a@example.com", "b@example.com"})

	msg := string(gotMsg)
	assert.Check(t, strings.HasPrefix(msg, "To: a@example.com, b@example.com,\r\n"))
	assert.Check(t, strings.Contains(msg, "Subject: FlowTagger run summary\r\n"))
	assert.Check(t, strings.Contains(msg, "<table>"), msg)
	assert.Check(t, strings.Contains(msg, "<td>web</td>"), msg)
}

func TestEmailNotifier_SendError(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{Host: "localhost", Port: 25})
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err := n.Send("subject", "body")
	assert.ErrorContains(t, err, "failed to send email: connection refused")
}

func TestReportHTML(t *testing.T) {
	html := ReportHTML(testReport(), 1)
	assert.Check(t, strings.Contains(html, "<h1"), html)
	assert.Check(t, strings.Contains(html, "<td>web</td>"), html)
	assert.Check(t, !strings.Contains(html, "<td>Untagged</td>"), html)
}
