package validation

import (
	"net"
	"strings"
	"testing"

	"github.com/unbreakablehf/xnio/errors"
)

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"nio", false},
		{"", true},
		{"   ", true},
	}
	for _, tc := range tests {
		if got := New().Required("provider", tc.value).HasErrors(); got != tc.wantErr {
			t.Errorf("Required(%q): HasErrors=%v, want %v", tc.value, got, tc.wantErr)
		}
	}
}

func TestValidatorNotNil(t *testing.T) {
	if !New().NotNil("handler", nil).HasErrors() {
		t.Error("expected error for nil handler")
	}
	if New().NotNil("handler", struct{}{}).HasErrors() {
		t.Error("expected no error for non-nil handler")
	}
}

func TestValidatorHostPort(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"127.0.0.1:8080", false},
		{":0", false},
		{"[::1]:443", false},
		{"localhost", true},
		{"host:99999", true},
		{"host:http", true},
	}
	for _, tc := range tests {
		if got := New().HostPort("bind", tc.value).HasErrors(); got != tc.wantErr {
			t.Errorf("HostPort(%q): HasErrors=%v, want %v", tc.value, got, tc.wantErr)
		}
	}
}

func TestValidatorAddr(t *testing.T) {
	tcp := &net.TCPAddr{Port: 80}
	udp := &net.UDPAddr{Port: 53}

	if New().Addr("bind", tcp, "tcp").HasErrors() {
		t.Error("expected TCP address to pass")
	}
	if New().Addr("bind", udp).HasErrors() {
		t.Error("expected any network to pass when none are listed")
	}
	v := New().Addr("bind", udp, "tcp", "tcp4")
	if !v.HasErrors() || !strings.Contains(v.Errors()[0].Message, "tcp or tcp4") {
		t.Errorf("expected network mismatch, got %v", v.Errors())
	}
	if !New().Addr("bind", nil).HasErrors() {
		t.Error("expected nil address to fail")
	}
}

func TestValidatorRangeMinOneOf(t *testing.T) {
	if New().Range("port", 80, 0, 65535).HasErrors() {
		t.Error("expected 80 in range")
	}
	if !New().Range("port", 70000, 0, 65535).HasErrors() {
		t.Error("expected 70000 out of range")
	}
	if !New().Min("workers", -1, 0).HasErrors() {
		t.Error("expected -1 below min")
	}
	if New().OneOf("format", "", []string{"json"}).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	if !New().OneOf("format", "xml", []string{"json", "console"}).HasErrors() {
		t.Error("expected xml to be rejected")
	}
	if !New().Custom(false, "backlog", "must be positive").HasErrors() {
		t.Error("expected custom condition to fail")
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("expected nil for no errors, got %v", err)
	}

	err := New().Required("provider", "").Min("workers", -1, 0).Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "provider: is required") || !strings.Contains(err.Message, "workers: must be at least 0") {
		t.Errorf("unexpected message: %s", err.Message)
	}
	fields, ok := err.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", err.Details["fields"])
	}
}

type poolSettings struct {
	Name      string `mapstructure:"name" validate:"required"`
	Workers   int    `mapstructure:"workers" validate:"gte=0,lte=1024"`
	QueueSize int    `validate:"gte=0"`
	Format    string `mapstructure:"format" validate:"omitempty,oneof=json console"`
}

func TestStructValidate(t *testing.T) {
	tests := []struct {
		name   string
		in     poolSettings
		fields []string
	}{
		{"valid", poolSettings{Name: "pool", Workers: 4}, nil},
		{"missing name", poolSettings{Workers: 4}, []string{"name"}},
		{"too many workers", poolSettings{Name: "pool", Workers: 2048}, []string{"workers"}},
		{"negative queue", poolSettings{Name: "pool", QueueSize: -1}, []string{"queue_size"}},
		{"bad format", poolSettings{Name: "pool", Format: "xml"}, []string{"format"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if len(tc.fields) == 0 {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			fields := appErr.Details["fields"].([]FieldError)
			if len(fields) != len(tc.fields) {
				t.Fatalf("expected %d field errors, got %v", len(tc.fields), fields)
			}
			for i, f := range tc.fields {
				if fields[i].Field != f {
					t.Errorf("expected field %q, got %q", f, fields[i].Field)
				}
			}
		})
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("provider", "nio"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("provider", ""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"QueueSize": "queue_size",
		"Workers":   "workers",
		"":          "",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
