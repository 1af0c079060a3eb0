package services

import (
	"testing"
	"time"

	"hackmate/apperr"
	"hackmate/models"
)

func TestRegisterAndUnregister(t *testing.T) {
	db := testDB(t)
	user := mkUser(t, db, "dev")
	hackathon := mkHackathon(t, db, "AI Innovation Challenge", 100)

	svc := NewHackathonService(db)
	if err := svc.Register(user.ID, hackathon.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Register(user.ID, hackathon.ID); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("duplicate error = %v, want conflict", err)
	}
	if got := svc.ParticipantCount(hackathon.ID); got != 1 {
		t.Errorf("participants = %d, want 1", got)
	}

	mine, err := svc.MyRegistrations(user.ID)
	if err != nil {
		t.Fatalf("my registrations: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "AI Innovation Challenge" {
		t.Errorf("registrations = %+v, want the one event", mine)
	}

	if err := svc.Unregister(user.ID, hackathon.ID); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if err := svc.Unregister(user.ID, hackathon.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("second unregister error = %v, want not found", err)
	}
}

func TestRegisterEnforcesCapacity(t *testing.T) {
	db := testDB(t)
	first := mkUser(t, db, "first")
	second := mkUser(t, db, "second")
	hackathon := mkHackathon(t, db, "Tiny Jam", 1)

	svc := NewHackathonService(db)
	if err := svc.Register(first.ID, hackathon.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Register(second.ID, hackathon.ID); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("over-capacity error = %v, want conflict", err)
	}
	if got := svc.ParticipantCount(hackathon.ID); got != 1 {
		t.Errorf("participants after rejected register = %d, want 1", got)
	}
}

func TestRegisterUnknownHackathon(t *testing.T) {
	db := testDB(t)
	user := mkUser(t, db, "dev")

	if err := NewHackathonService(db).Register(user.ID, 999); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown hackathon error = %v, want not found", err)
	}
}

func TestCreateHackathonValidation(t *testing.T) {
	db := testDB(t)
	svc := NewHackathonService(db)

	start := time.Now().AddDate(0, 1, 0)
	base := CreateHackathonInput{
		Name:      "Spring Jam",
		Category:  models.CategoryWeb3,
		Mode:      models.ModeHybrid,
		StartDate: start.Format(time.RFC3339),
		EndDate:   start.AddDate(0, 0, 2).Format(time.RFC3339),
	}

	created, err := svc.Create(base)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.MaxParticipants != 500 {
		t.Errorf("default max participants = %d, want 500", created.MaxParticipants)
	}
	if created.Status != string(models.HackathonUpcoming) {
		t.Errorf("status = %s, want upcoming", created.Status)
	}

	bad := base
	bad.EndDate = start.AddDate(0, 0, -1).Format(time.RFC3339)
	if _, err := svc.Create(bad); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("end-before-start error = %v, want validation", err)
	}

	bad = base
	bad.Category = "skydiving"
	if _, err := svc.Create(bad); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("bad category error = %v, want validation", err)
	}

	bad = base
	bad.StartDate = "next tuesday"
	if _, err := svc.Create(bad); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("bad date error = %v, want validation", err)
	}
}

func TestListHackathonsFilters(t *testing.T) {
	db := testDB(t)
	mkHackathon(t, db, "AI Jam", 100)
	other := mkHackathon(t, db, "Web3 Summit", 100)
	db.Model(other).Update("category", models.CategoryWeb3)

	svc := NewHackathonService(db)
	all, err := svc.List(HackathonFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}

	web3, err := svc.List(HackathonFilter{Category: string(models.CategoryWeb3)})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(web3) != 1 || web3[0].Name != "Web3 Summit" {
		t.Errorf("filtered = %+v, want only Web3 Summit", web3)
	}

	found, err := svc.Search("summit")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("search hits = %d, want 1", len(found))
	}
}
