package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"hackmate/apperr"
	"hackmate/models"
)

func TestApplyCreatesPendingRequest(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	applicant := mkUser(t, db, "applicant")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	membership, err := svc.Apply(applicant.ID, team.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if membership.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", membership.Status)
	}
	if membership.Role != models.RoleMember {
		t.Errorf("role = %s, want member", membership.Role)
	}
}

func TestApplyTwiceConflicts(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	applicant := mkUser(t, db, "applicant")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	if _, err := svc.Apply(applicant.ID, team.ID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	_, err := svc.Apply(applicant.ID, team.ID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("second apply error = %v, want conflict", err)
	}

	var count int64
	db.Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", team.ID, applicant.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("membership rows = %d, want 1", count)
	}
}

func TestApplyToMissingTeam(t *testing.T) {
	db := testDB(t)
	applicant := mkUser(t, db, "applicant")

	_, err := NewMembershipService(db).Apply(applicant.ID, 999)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestInviteCreatesInvitedRow(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	invitee := mkUser(t, db, "invitee")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	inviteID, err := svc.Invite(lead.ID, team.ID, invitee.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if inviteID == 0 {
		t.Fatal("invite id = 0")
	}

	m := membershipRow(t, db, team.ID, invitee.ID)
	if m.Status != models.StatusInvited {
		t.Errorf("status = %s, want invited", m.Status)
	}
	if m.Viewed {
		t.Error("new invite should start unviewed")
	}
}

func TestInviteConvertsPendingRequest(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	applicant := mkUser(t, db, "applicant")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	applied, err := svc.Apply(applicant.ID, team.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	inviteID, err := svc.Invite(lead.ID, team.ID, applicant.ID)
	if err != nil {
		t.Fatalf("invite over pending: %v", err)
	}
	if inviteID != applied.ID {
		t.Errorf("invite reused row %d, want %d", inviteID, applied.ID)
	}

	m := membershipRow(t, db, team.ID, applicant.ID)
	if m.Status != models.StatusInvited {
		t.Errorf("status = %s, want invited", m.Status)
	}
}

func TestInviteAfterRejectionReinvites(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	invitee := mkUser(t, db, "invitee")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	inviteID, err := svc.Invite(lead.ID, team.ID, invitee.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := svc.RejectInvite(invitee.ID, inviteID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	again, err := svc.Invite(lead.ID, team.ID, invitee.ID)
	if err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	if again != inviteID {
		t.Errorf("re-invite created row %d, want reuse of %d", again, inviteID)
	}

	m := membershipRow(t, db, team.ID, invitee.ID)
	if m.Status != models.StatusInvited {
		t.Errorf("status = %s, want invited", m.Status)
	}
	if m.Viewed {
		t.Error("re-invite should reset viewed")
	}
}

func TestInviteDuplicateConflicts(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	invitee := mkUser(t, db, "invitee")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	if _, err := svc.Invite(lead.ID, team.ID, invitee.ID); err != nil {
		t.Fatalf("invite: %v", err)
	}
	_, err := svc.Invite(lead.ID, team.ID, invitee.ID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("duplicate invite error = %v, want conflict", err)
	}
}

func TestInviteExistingMemberConflicts(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	member := mkUser(t, db, "member")
	team := mkTeam(t, db, lead.ID, "builders", 4)
	acceptMember(t, db, lead.ID, team.ID, member.ID)

	_, err := NewMembershipService(db).Invite(lead.ID, team.ID, member.ID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("error = %v, want conflict", err)
	}
}

func TestInviteRequiresAcceptedMembership(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	outsider := mkUser(t, db, "outsider")
	invitee := mkUser(t, db, "invitee")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	_, err := NewMembershipService(db).Invite(outsider.ID, team.ID, invitee.ID)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("error = %v, want forbidden", err)
	}
}

func TestNonLeadMemberCanInvite(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	member := mkUser(t, db, "member")
	invitee := mkUser(t, db, "invitee")
	team := mkTeam(t, db, lead.ID, "builders", 4)
	acceptMember(t, db, lead.ID, team.ID, member.ID)

	if _, err := NewMembershipService(db).Invite(member.ID, team.ID, invitee.ID); err != nil {
		t.Fatalf("member invite: %v", err)
	}
}

func TestAcceptInviteJoinsRoster(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	invitee := mkUser(t, db, "invitee")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	inviteID, err := svc.Invite(lead.ID, team.ID, invitee.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := svc.AcceptInvite(invitee.ID, inviteID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	m := membershipRow(t, db, team.ID, invitee.ID)
	if m.Status != models.StatusAccepted {
		t.Errorf("status = %s, want accepted", m.Status)
	}
	if got := NewTeamService(db).MemberCount(team.ID); got != 2 {
		t.Errorf("member count = %d, want 2", got)
	}
}

// Accepting someone else's invite must look identical to the invite not
// existing at all.
func TestForeignInviteIsMasked(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	invitee := mkUser(t, db, "invitee")
	thief := mkUser(t, db, "thief")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	inviteID, err := svc.Invite(lead.ID, team.ID, invitee.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	if err := svc.AcceptInvite(thief.ID, inviteID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("foreign accept error = %v, want not found", err)
	}
	if err := svc.RejectInvite(thief.ID, inviteID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("foreign reject error = %v, want not found", err)
	}

	// The real invitee can still accept afterwards.
	if err := svc.AcceptInvite(invitee.ID, inviteID); err != nil {
		t.Fatalf("legitimate accept: %v", err)
	}
}

func TestAcceptInviteEnforcesCapacity(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	first := mkUser(t, db, "first")
	second := mkUser(t, db, "second")
	// Two seats total: the lead plus one open position.
	team := mkTeam(t, db, lead.ID, "duo", 2)

	svc := NewMembershipService(db)
	acceptMember(t, db, lead.ID, team.ID, first.ID)

	inviteID, err := svc.Invite(lead.ID, team.ID, second.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	err = svc.AcceptInvite(second.ID, inviteID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("accept into full team error = %v, want conflict", err)
	}

	m := membershipRow(t, db, team.ID, second.ID)
	if m.Status != models.StatusInvited {
		t.Errorf("status = %s, want invited to survive the failed accept", m.Status)
	}
}

func TestAcceptRequestEnforcesCapacity(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	first := mkUser(t, db, "first")
	applicant := mkUser(t, db, "applicant")
	team := mkTeam(t, db, lead.ID, "duo", 2)

	svc := NewMembershipService(db)
	if _, err := svc.Apply(applicant.ID, team.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// The last seat goes to someone else while the request is pending.
	acceptMember(t, db, lead.ID, team.ID, first.ID)

	err := svc.AcceptRequest(lead.ID, team.ID, applicant.ID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("accept into full team error = %v, want conflict", err)
	}
	m := membershipRow(t, db, team.ID, applicant.ID)
	if m.Status != models.StatusPending {
		t.Errorf("status = %s, want pending to survive the failed accept", m.Status)
	}
}

// The (team_id, user_id) index is the backstop when two writers race past the
// duplicate lookup; the driver must surface it as gorm's duplicated-key error
// so the services can answer with a conflict.
func TestDuplicateMembershipInsertIsDuplicatedKey(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	user := mkUser(t, db, "user")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	row := models.TeamMembership{
		TeamID: team.ID,
		UserID: user.ID,
		Role:   models.RoleMember,
		Status: models.StatusPending,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	dup := models.TeamMembership{
		TeamID: team.ID,
		UserID: user.ID,
		Role:   models.RoleMember,
		Status: models.StatusInvited,
	}
	if err := db.Create(&dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate insert: err = %v, want duplicated key", err)
	}
}

func TestJoinRequestDecisionsAreLeadOnly(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	member := mkUser(t, db, "member")
	applicant := mkUser(t, db, "applicant")
	team := mkTeam(t, db, lead.ID, "builders", 4)
	acceptMember(t, db, lead.ID, team.ID, member.ID)

	svc := NewMembershipService(db)
	if _, err := svc.Apply(applicant.ID, team.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := svc.AcceptRequest(member.ID, team.ID, applicant.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("member accept error = %v, want forbidden", err)
	}
	if err := svc.AcceptRequest(lead.ID, team.ID, applicant.ID); err != nil {
		t.Fatalf("lead accept: %v", err)
	}

	m := membershipRow(t, db, team.ID, applicant.ID)
	if m.Status != models.StatusAccepted {
		t.Errorf("status = %s, want accepted", m.Status)
	}
}

func TestRejectRequestKeepsRow(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	applicant := mkUser(t, db, "applicant")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	if _, err := svc.Apply(applicant.ID, team.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := svc.RejectRequest(lead.ID, team.ID, applicant.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	m := membershipRow(t, db, team.ID, applicant.ID)
	if m.Status != models.StatusRejected {
		t.Errorf("status = %s, want rejected", m.Status)
	}

	// The outcome stays visible in the applicant's request history.
	requests, err := svc.MyJoinRequests(applicant.ID)
	if err != nil {
		t.Fatalf("my join requests: %v", err)
	}
	if len(requests) != 1 || requests[0].Status != string(models.StatusRejected) {
		t.Errorf("requests = %+v, want one rejected entry", requests)
	}
}

func TestMyInvitesAndMarkViewed(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	invitee := mkUser(t, db, "invitee")
	team := mkTeam(t, db, lead.ID, "builders", 4)

	svc := NewMembershipService(db)
	if _, err := svc.Invite(lead.ID, team.ID, invitee.ID); err != nil {
		t.Fatalf("invite: %v", err)
	}

	invites, err := svc.MyInvites(invitee.ID)
	if err != nil {
		t.Fatalf("my invites: %v", err)
	}
	if len(invites) != 1 {
		t.Fatalf("invites = %d, want 1", len(invites))
	}
	if invites[0].TeamName != "builders" {
		t.Errorf("team name = %s, want builders", invites[0].TeamName)
	}
	if invites[0].Viewed {
		t.Error("fresh invite should be unviewed")
	}

	updated, err := svc.MarkInvitesViewed(invitee.ID)
	if err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	// Marking again changes nothing.
	updated, err = svc.MarkInvitesViewed(invitee.ID)
	if err != nil {
		t.Fatalf("second mark viewed: %v", err)
	}
	if updated != 0 {
		t.Errorf("second update = %d, want 0", updated)
	}
}

func TestPendingRequestsLeadOnly(t *testing.T) {
	db := testDB(t)
	lead := mkUser(t, db, "lead")
	member := mkUser(t, db, "member")
	applicant := mkUser(t, db, "applicant")
	team := mkTeam(t, db, lead.ID, "builders", 4)
	acceptMember(t, db, lead.ID, team.ID, member.ID)

	svc := NewMembershipService(db)
	if _, err := svc.Apply(applicant.ID, team.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := svc.PendingRequests(member.ID, team.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("member list error = %v, want forbidden", err)
	}

	requests, err := svc.PendingRequests(lead.ID, team.ID)
	if err != nil {
		t.Fatalf("lead list: %v", err)
	}
	if len(requests) != 1 || requests[0].Username != "applicant" {
		t.Errorf("requests = %+v, want the applicant", requests)
	}
}
