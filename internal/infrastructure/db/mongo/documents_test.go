package mongo

import (
	"testing"
	"time"

	"github.com/synergia/erp-api/internal/core/domain"
)

func TestClientSet_Sparse(t *testing.T) {
	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	set := clientSet(domain.ClientPatch{Status: domain.Some(domain.ClientActive), Phone: domain.Null[string]()}, at)

	if set["status"] != "ACTIVE" {
		t.Fatalf("expected status set, got %v", set["status"])
	}
	phone, ok := set["phone"]
	if !ok {
		t.Fatalf("expected phone to be written")
	}
	if p, _ := phone.(*string); p != nil {
		t.Fatalf("expected phone null, got %v", *p)
	}
	for _, absent := range []string{"name", "email", "address"} {
		if _, ok := set[absent]; ok {
			t.Fatalf("absent field %s must not be written", absent)
		}
	}
	if set["updated_at"] != at {
		t.Fatalf("expected updated_at, got %v", set["updated_at"])
	}
}

func TestProjectSet_ClearsDates(t *testing.T) {
	set := projectSet(domain.ProjectPatch{EndDate: domain.Null[time.Time](), ClientID: domain.Some("c2")}, time.Now())

	if v, ok := set["end_date"]; !ok || v.(*time.Time) != nil {
		t.Fatalf("expected end_date null, got %v", v)
	}
	if set["client_id"] != "c2" {
		t.Fatalf("expected client_id, got %v", set["client_id"])
	}
	if _, ok := set["start_date"]; ok {
		t.Fatalf("start_date must not be written")
	}
}

func TestUserSet(t *testing.T) {
	set := userSet(domain.UserPatch{Role: domain.Some(domain.RoleManager)}, time.Now())
	if set["role"] != "MANAGER" {
		t.Fatalf("expected role, got %v", set["role"])
	}
	if _, ok := set["status"]; ok {
		t.Fatalf("status must not be written")
	}
}

func TestProjectDoc_ToDomainEmbedsClient(t *testing.T) {
	d := projectDoc{ID: "p1", ClientID: "c1", Status: "PLANNED", Client: &clientDoc{ID: "c1", Name: "Acme", Status: "LEAD"}}
	p := d.toDomain()
	if p.Client == nil || p.Client.Name != "Acme" {
		t.Fatalf("expected embedded client, got %+v", p.Client)
	}
}
