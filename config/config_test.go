package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"status-monitor/models"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "CHECK_TIMEOUT", "HISTORY_RETENTION_DAYS", "CHECK_SCHEDULE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg := FromEnv()
	if cfg.Port != "8081" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.CheckTimeout != 10*time.Second {
		t.Errorf("CheckTimeout = %s", cfg.CheckTimeout)
	}
	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d", cfg.RetentionDays)
	}
	if cfg.CheckSchedule != "@every 5m" {
		t.Errorf("CheckSchedule = %q", cfg.CheckSchedule)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHECK_TIMEOUT", "2500")
	t.Setenv("HISTORY_RETENTION_DAYS", "30")
	t.Setenv("MANUAL_TRIGGER_RPS", "1.5")

	cfg := FromEnv()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.CheckTimeout != 2500*time.Millisecond {
		t.Errorf("CheckTimeout = %s", cfg.CheckTimeout)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d", cfg.RetentionDays)
	}
	if cfg.ManualTriggerRPS != 1.5 {
		t.Errorf("ManualTriggerRPS = %v", cfg.ManualTriggerRPS)
	}
}

func TestGetEnvDuration_GoSyntax(t *testing.T) {
	t.Setenv("CHECK_TIMEOUT", "3s")
	if got := getEnvDuration("CHECK_TIMEOUT", time.Second); got != 3*time.Second {
		t.Errorf("got %s", got)
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("HISTORY_RETENTION_DAYS", "ninety")
	if got := getEnvInt("HISTORY_RETENTION_DAYS", 90); got != 90 {
		t.Errorf("got %d", got)
	}
}

func TestLoadRegistry_Default(t *testing.T) {
	components, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("default registry invalid: %v", err)
	}
	if len(components) != len(DefaultComponents) {
		t.Fatalf("got %d components", len(components))
	}
	components[0].Name = "mutated"
	if DefaultComponents[0].Name == "mutated" {
		t.Error("LoadRegistry must return a copy of the defaults")
	}
}

func TestLoadRegistry_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	yaml := `
components:
  - id: svc-a
    name: Service A
    url: https://a.example.com/health
    checkType: deep
  - id: svc-b
    name: Service B
    url: http://b.example.com/
    method: head
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	components, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(components) != 2 {
		t.Fatalf("got %d components", len(components))
	}
	if components[0].Method != "GET" || components[0].CheckType != models.CheckDeep {
		t.Errorf("svc-a = %+v", components[0])
	}
	if components[1].Method != "HEAD" || components[1].CheckType != models.CheckShallow {
		t.Errorf("svc-b = %+v", components[1])
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseRegistry_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":        `components: []`,
		"duplicate":    "components:\n  - {id: a, name: A, url: http://a}\n  - {id: a, name: B, url: http://b}\n",
		"bad scheme":   "components:\n  - {id: a, name: A, url: ftp://a}\n",
		"deep head":    "components:\n  - {id: a, name: A, url: http://a, checkType: deep, method: HEAD}\n",
		"bad type":     "components:\n  - {id: a, name: A, url: http://a, checkType: ping}\n",
		"missing name": "components:\n  - {id: a, url: http://a}\n",
		"not yaml":     "components: [",
	}
	for name, doc := range tests {
		if _, err := ParseRegistry([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestValidateRegistry_ReportsAllErrors(t *testing.T) {
	err := ValidateRegistry([]models.ComponentConfig{
		{ID: "a", URL: "http://a", CheckType: models.CheckShallow, Method: "GET"},
		{ID: "b", Name: "B", URL: "nope", CheckType: models.CheckShallow, Method: "GET"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "component a: name is required") || !strings.Contains(msg, "component b: url") {
		t.Errorf("unexpected error: %v", msg)
	}
}
