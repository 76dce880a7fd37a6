package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func noopHandler(ctx context.Context, args map[string]any) (string, error) {
	return "ok", nil
}

// TestRegisterAndLookup verifies the basic register/lookup round trip.
func TestRegisterAndLookup(t *testing.T) {
	r := New()

	if err := r.Register("count_weekday", "Counts weekday occurrences", ObjectSchema(nil), noopHandler); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	h, err := r.Handler("count_weekday")
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	out, err := h(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if out != "ok" {
		t.Errorf("handler output = %q, want ok", out)
	}
}

// TestRegisterDuplicate verifies duplicate names fail with DuplicateTaskError.
func TestRegisterDuplicate(t *testing.T) {
	r := New()

	if err := r.Register("sort_contacts", "first", ObjectSchema(nil), noopHandler); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := r.Register("sort_contacts", "second", ObjectSchema(nil), noopHandler)
	if err == nil {
		t.Fatal("second Register() should fail")
	}

	var dup *DuplicateTaskError
	if !errors.As(err, &dup) {
		t.Errorf("error = %T, want *DuplicateTaskError", err)
	}
	if dup != nil && dup.Name != "sort_contacts" {
		t.Errorf("DuplicateTaskError.Name = %q", dup.Name)
	}
}

// TestHandlerUnknown verifies lookups of unregistered names fail with
// UnknownTaskError.
func TestHandlerUnknown(t *testing.T) {
	r := New()

	_, err := r.Handler("nope")
	if err == nil {
		t.Fatal("Handler() should fail for unregistered task")
	}

	var unknown *UnknownTaskError
	if !errors.As(err, &unknown) {
		t.Errorf("error = %T, want *UnknownTaskError", err)
	}
	if !IsUnknownTaskError(err) {
		t.Error("IsUnknownTaskError() = false, want true")
	}
}

// TestDescriptorsOrder verifies registration order is preserved, which keeps
// the tool list presented to the LLM deterministic.
func TestDescriptorsOrder(t *testing.T) {
	r := New()
	names := []string{"zeta", "alpha", "mid", "beta"}
	for _, name := range names {
		if err := r.Register(name, "d", ObjectSchema(nil), noopHandler); err != nil {
			t.Fatal(err)
		}
	}

	descs := r.Descriptors()
	if len(descs) != len(names) {
		t.Fatalf("got %d descriptors, want %d", len(descs), len(names))
	}
	for i, name := range names {
		if descs[i].Name != name {
			t.Errorf("descs[%d].Name = %q, want %q", i, descs[i].Name, name)
		}
	}
}

// TestSchemaValidate exercises the argument validation rules.
func TestSchemaValidate(t *testing.T) {
	schema := ObjectSchema(map[string]Property{
		"weekday": {Type: "string", Enum: []string{"Monday", "Wednesday"}},
		"source":  {Type: "string"},
		"limit":   {Type: "integer"},
		"ratio":   {Type: "number"},
		"dry_run": {Type: "boolean"},
		"fields":  {Type: "array", Items: &Property{Type: "string"}},
	}, "weekday")

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"valid minimal", map[string]any{"weekday": "Wednesday"}, false},
		{"valid full", map[string]any{
			"weekday": "Monday",
			"source":  "dates.txt",
			"limit":   float64(10),
			"ratio":   0.5,
			"dry_run": true,
			"fields":  []any{"last_name", "first_name"},
		}, false},
		{"missing required", map[string]any{"source": "dates.txt"}, true},
		{"unknown parameter", map[string]any{"weekday": "Monday", "bogus": "x"}, true},
		{"enum violation", map[string]any{"weekday": "Funday"}, true},
		{"wrong string type", map[string]any{"weekday": "Monday", "source": 7.0}, true},
		{"non-integer", map[string]any{"weekday": "Monday", "limit": 1.5}, true},
		{"non-boolean", map[string]any{"weekday": "Monday", "dry_run": "yes"}, true},
		{"non-array", map[string]any{"weekday": "Monday", "fields": "last_name"}, true},
		{"array item type", map[string]any{"weekday": "Monday", "fields": []any{"a", 3.0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate("count_weekday", tt.args)
			if tt.wantErr && err == nil {
				t.Error("Validate() should fail")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if tt.wantErr && err != nil && !IsArgumentError(err) {
				t.Errorf("error = %T, want *ArgumentError", err)
			}
		})
	}
}

// TestTaskErrorWrapping verifies cause preservation through Unwrap.
func TestTaskErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("disk full")
	te := NewTaskError("sort_contacts", KindIOFailure, "write failed", cause)

	if !errors.Is(te, cause) {
		t.Error("TaskError should wrap its cause")
	}
	if !IsTaskError(fmt.Errorf("dispatch: %w", te)) {
		t.Error("IsTaskError() should see through wrapping")
	}
	if te.Kind != KindIOFailure {
		t.Errorf("Kind = %v, want KindIOFailure", te.Kind)
	}
	if te.Kind.String() != "io_failure" {
		t.Errorf("Kind.String() = %q", te.Kind.String())
	}
}

// TestFailureKindStrings pins the wire names of the failure kinds.
func TestFailureKindStrings(t *testing.T) {
	tests := []struct {
		kind FailureKind
		want string
	}{
		{KindNotFound, "not_found"},
		{KindInvalidInput, "invalid_input"},
		{KindExternalServiceFailure, "external_service_failure"},
		{KindIOFailure, "io_failure"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
