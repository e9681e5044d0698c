package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tgcheck/internal/check"
)

func sampleReport() *check.RunReport {
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return &check.RunReport{
		ID:         "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Results: []check.Result{
			{Phone: "79990000001", Proxy: "10.0.0.1:1080", Outcome: check.OutcomeAuthorized()},
			{Phone: "79990000002", Proxy: "10.0.0.2:1080", Outcome: check.OutcomeUnauthorized(), Quarantined: true},
			{Phone: "79990000003", Proxy: "10.0.0.1:1080", Outcome: check.OutcomeRateLimited(30 * time.Second)},
		},
	}
}

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		lang string
		want []string
	}{
		{
			lang: "en",
			want: []string{
				"Run run-1: 3 sessions checked in 3s",
				"79990000002",
				"not authorized",
				"(moved to quarantine)",
				"retry after 30 s",
				"Check finished: some sessions failed.",
			},
		},
		{
			lang: "ru",
			want: []string{
				"Запуск run-1",
				"не авторизована",
				"(перемещена в карантин)",
				"повтор через 30 с",
				"Проверка завершена: часть сессий не прошла проверку.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			var buf bytes.Buffer
			printReport(&buf, newPrinter(tt.lang), sampleReport())

			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestPrintReport_AllAuthorized(t *testing.T) {
	color.NoColor = true

	report := sampleReport()
	report.Results = report.Results[:1]

	var buf bytes.Buffer
	printReport(&buf, newPrinter("en"), report)

	if !strings.Contains(buf.String(), "all sessions are authorized") {
		t.Errorf("output = %q, want success line", buf.String())
	}
}

func TestPrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, newPrinter("ru"), nil)

	if got := strings.TrimSpace(buf.String()); got != "Запусков не найдено." {
		t.Errorf("output = %q", got)
	}
}

func TestOutcomeLabel_EveryKindTranslated(t *testing.T) {
	ru := newPrinter("ru")
	en := newPrinter("en")
	for kind := check.Authorized; kind <= check.UnexpectedFailure; kind++ {
		if outcomeLabel(ru, kind) == outcomeLabel(en, kind) {
			t.Errorf("kind %s has no Russian label", kind)
		}
	}
}

func TestNewPrinter_UnknownLanguageFallsBack(t *testing.T) {
	if got := newPrinter("not a tag!").Sprintf(msgNoRuns); got != msgNoRuns {
		t.Errorf("Sprintf = %q, want %q", got, msgNoRuns)
	}
}
