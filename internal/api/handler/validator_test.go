package handler

import (
	"strings"
	"testing"
	"time"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()
	start, end := date(mustDay(t, "2024-03-01")), date(mustDay(t, "2024-02-01"))

	tests := []struct {
		name string
		req  any
		want string
	}{
		{
			name: "blank name",
			req:  &createClientRequest{Name: "   ", Email: "a@b.co"},
			want: "name is required",
		},
		{
			name: "bad email",
			req:  &inviteUserRequest{Email: "nope", Name: "Ann"},
			want: "email must be a valid email",
		},
		{
			name: "short password",
			req:  &inviteUserRequest{Email: "a@b.co", Name: "Ann", Password: "short"},
			want: "password must be at least 8 characters",
		},
		{
			name: "unknown status",
			req:  &createProjectRequest{Name: "Site", ClientID: "c1", Status: "DONE"},
			want: "status must be one of: PLANNED IN_PROGRESS COMPLETED CANCELLED",
		},
		{
			name: "end before start",
			req:  &createProjectRequest{Name: "Site", ClientID: "c1", StartDate: &start, EndDate: &end},
			want: "endDate must not be before startDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestValidator_AcceptsValidProject(t *testing.T) {
	start, end := date(mustDay(t, "2024-02-01")), date(mustDay(t, "2024-02-01"))
	req := &createProjectRequest{Name: "Site", ClientID: "c1", StartDate: &start, EndDate: &end}
	if err := NewValidator().Validate(req); err != nil {
		t.Fatalf("same-day project should be valid, got %v", err)
	}
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}
