package importer

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/fooddept/fdbms/internal/models"
)

func contractRow(name, from, to string, rate float64) Row {
	return Row{
		"contractor name": Text(name),
		"from":            Text(from),
		"to":              Text(to),
		"rate":            Number(rate),
	}
}

func TestMergeContracts(t *testing.T) {
	existing := []models.Contract{
		{ContractID: 1, ContractorName: "A", FromLocation: "X", ToLocation: "Y", RatePerKg: 5, Status: models.ContractInactive},
	}
	rows := []Row{
		contractRow("a ", "x", "Y", 7),
		contractRow("B", "P", "Q", 3),
	}

	res := Merge(Contracts, existing, rows)

	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.Updated != 1 || res.Added != 1 || res.Skipped != 0 {
		t.Errorf("expected 1 updated, 1 added, 0 skipped, got %d, %d, %d", res.Updated, res.Added, res.Skipped)
	}

	updated := res.Records[0]
	if updated.ContractID != 1 || updated.RatePerKg != 7 {
		t.Errorf("expected contract 1 at rate 7, got %d at %v", updated.ContractID, updated.RatePerKg)
	}
	if updated.Status != models.ContractInactive {
		t.Errorf("expected status to survive a row without one, got %q", updated.Status)
	}
	if updated.FromLocation != "x" {
		t.Errorf("expected present fields to overwrite, got from %q", updated.FromLocation)
	}

	added := res.Records[1]
	if added.ContractID != 2 || added.ContractorName != "B" || added.Status != models.ContractActive {
		t.Errorf("unexpected added contract: %+v", added)
	}

	if existing[0].RatePerKg != 5 {
		t.Error("merge modified the existing slice")
	}
}

func TestMergeSkipsRowsWithoutKey(t *testing.T) {
	rows := []Row{
		{"contractor name": Text("A"), "from": Text("X")},
		{"contractor name": Text("A"), "from": Text("X"), "to": Text("  ")},
		contractRow("A", "X", "Y", 1),
	}

	res := Merge(Contracts, nil, rows)

	if res.Skipped != 2 || res.Added != 1 {
		t.Errorf("expected 2 skipped and 1 added, got %d and %d", res.Skipped, res.Added)
	}
}

func TestMergeRepeatedKeyUpdatesTheAddedRecord(t *testing.T) {
	rows := []Row{
		contractRow("A", "X", "Y", 1),
		contractRow("A", "X", "Y", 2),
	}

	res := Merge(Contracts, nil, rows)

	if len(res.Records) != 1 || res.Added != 1 || res.Updated != 1 {
		t.Fatalf("expected 1 record from 1 add and 1 update, got %+v", res)
	}
	if res.Records[0].RatePerKg != 2 {
		t.Errorf("expected the later row to win, got rate %v", res.Records[0].RatePerKg)
	}
}

func TestReplaceAll(t *testing.T) {
	existing := []models.Contract{
		{ContractID: 7, ContractorName: "Old", FromLocation: "F", ToLocation: "T"},
		{ContractID: 9, ContractorName: "Older", FromLocation: "F", ToLocation: "T"},
	}
	rows := []Row{
		contractRow("A", "X", "Y", 1),
		{"contractor": Text("no route")},
		contractRow("B", "X", "Y", 2),
		contractRow("C", "X", "Y", 3),
	}

	t.Run("requires the confirmation phrase", func(t *testing.T) {
		for _, confirmation := range []string{"", "replace all", "REPLACE ALL "} {
			res, err := ReplaceAll(Contracts, existing, rows, confirmation)
			if !errors.Is(err, ErrConfirmationRequired) {
				t.Fatalf("confirmation %q: expected ErrConfirmationRequired, got %v", confirmation, err)
			}
			var ce *ConfirmationError
			if !errors.As(err, &ce) || ce.Existing != 2 || ce.Incoming != 4 {
				t.Errorf("unexpected confirmation error: %v", err)
			}
			if res.Records != nil {
				t.Error("expected no records on a failed confirmation")
			}
		}
	})

	t.Run("renumbers from one", func(t *testing.T) {
		res, err := ReplaceAll(Contracts, existing, rows, ConfirmationPhrase)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Removed != 2 || res.Added != 3 || res.Skipped != 1 {
			t.Errorf("expected 2 removed, 3 added, 1 skipped, got %d, %d, %d", res.Removed, res.Added, res.Skipped)
		}
		for i, c := range res.Records {
			if c.ContractID != int64(i+1) {
				t.Errorf("record %d: expected id %d, got %d", i, i+1, c.ContractID)
			}
		}
	})
}

func TestContractFields(t *testing.T) {
	row := Row{
		"sanction no":     Text("SN-12"),
		"contractor id":   Number(42),
		"contractor":      Text(" Khan & Sons "),
		"from location":   Text("Depot"),
		"to":              Text("Mill"),
		"rate/kg":         Text("1.25"),
		"effective date":  Number(45658),
		"status":          Text("Inactive"),
		"unrelated":       Text("ignored"),
		"contractor name": Cell{},
	}

	res := Merge(Contracts, nil, []Row{row})
	if res.Added != 1 {
		t.Fatalf("expected the row to be added, got %+v", res)
	}

	got := res.Records[0]
	want := models.Contract{
		ContractID:     1,
		SanctionedNo:   "SN-12",
		ContractorID:   42,
		ContractorName: "Khan & Sons",
		FromLocation:   "Depot",
		ToLocation:     "Mill",
		RatePerKg:      1.25,
		EffectiveDate:  "2025-01-01",
		Status:         models.ContractInactive,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestContractStatusFallsBackToActive(t *testing.T) {
	row := contractRow("A", "X", "Y", 1)
	row["status"] = Text("suspended")

	res := Merge(Contracts, []models.Contract{
		{ContractID: 3, ContractorName: "A", FromLocation: "X", ToLocation: "Y", Status: models.ContractInactive},
	}, []Row{row})

	if res.Records[0].Status != models.ContractActive {
		t.Errorf("expected Active, got %q", res.Records[0].Status)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
		ok   bool
	}{
		{"serial", Number(45658), "2025-01-01", true},
		{"serial with time", Number(45658.75), "2025-01-01", true},
		{"iso", Text("2024-03-15"), "2024-03-15", true},
		{"slashes", Text("03/15/2024"), "2024-03-15", true},
		{"long", Text("15 Mar 2024"), "2024-03-15", true},
		{"numeric text", Text("45658"), "", false},
		{"year as text", Text("2025"), "", false},
		{"year as number", Number(2025), "", false},
		{"negative serial", Number(-5), "", false},
		{"far future serial", Number(2958465), "", false},
		{"garbage", Text("soon"), "", false},
		{"empty", Cell{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell)
			if got != tt.want || ok != tt.ok {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestInvalidDateLeavesFieldUntouched(t *testing.T) {
	row := contractRow("A", "X", "Y", 1)
	row["date"] = Text("next week")

	res := Merge(Contracts, []models.Contract{
		{ContractID: 1, ContractorName: "A", FromLocation: "X", ToLocation: "Y", EffectiveDate: "2024-01-01"},
	}, []Row{row})

	if res.Records[0].EffectiveDate != "2024-01-01" {
		t.Errorf("expected date to be kept, got %q", res.Records[0].EffectiveDate)
	}
}

func TestMergeUsers(t *testing.T) {
	existing := []models.User{
		{ID: "u1", Username: "alice", PasswordHash: "kept", Role: models.RoleUser},
	}
	rows := []Row{
		{"user name": Text("Alice"), "user role": Text("manager")},
		{"login": Text("bob"), "password": Text("s3cret"), "role": Text("nobody")},
		{"role": Text("Admin")},
	}

	res := Merge(Users, existing, rows)

	if res.Updated != 1 || res.Added != 1 || res.Skipped != 1 {
		t.Fatalf("expected 1 updated, 1 added, 1 skipped, got %+v", res)
	}

	alice := res.Records[0]
	if alice.ID != "u1" || alice.Role != models.RoleManager || alice.PasswordHash != "kept" {
		t.Errorf("unexpected updated user: %+v", alice)
	}

	bob := res.Records[1]
	if bob.ID == "" || bob.ID == "u1" {
		t.Errorf("expected a fresh id, got %q", bob.ID)
	}
	if bob.Role != models.RoleUser {
		t.Errorf("expected an unknown role to default to User, got %q", bob.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(bob.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("expected imported password to verify: %v", err)
	}
}

func TestNewUserWithoutPasswordGetsOne(t *testing.T) {
	res := Merge(Users, nil, []Row{{"username": Text("carol")}})

	if res.Added != 1 {
		t.Fatalf("expected carol to be added, got %+v", res)
	}
	if res.Records[0].PasswordHash == "" {
		t.Error("expected a temporary password hash")
	}
}
