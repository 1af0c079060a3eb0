package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/metrics"
	"hackmate/middleware"
	"hackmate/services"
	"hackmate/ws"
)

type ApplyRequest struct {
	TeamID uint `json:"team_id"`
}

type InviteRequest struct {
	TeamID uint `json:"team_id"`
	UserID uint `json:"user_id"`
}

// ApplyToTeam files a join request from the caller to a team.
func ApplyToTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.TeamID == 0 {
		return apperr.Validation("team_id is required")
	}

	svc := services.NewMembershipService(database.GetDB())
	if _, err := svc.Apply(userID, req.TeamID); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Join request sent",
	})
}

// InviteToTeam invites a user to the caller's team. Any accepted member
// can invite; a pending application from the invitee is converted.
func InviteToTeam(c *fiber.Ctx) error {
	inviterID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.TeamID == 0 || req.UserID == 0 {
		return apperr.Validation("team_id and user_id are required")
	}

	svc := services.NewMembershipService(database.GetDB())
	inviteID, err := svc.Invite(inviterID, req.TeamID, req.UserID)
	if err != nil {
		return err
	}

	metrics.InvitesSent.Inc()
	hub.Notify(req.UserID, ws.Event{Type: "invite.new", Data: fiber.Map{
		"invite_id": inviteID,
		"team_id":   req.TeamID,
	}})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"invite_id": inviteID,
		"message":   "Invite sent",
	})
}

// MyInvites lists the caller's open invites, newest first.
func MyInvites(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	svc := services.NewMembershipService(database.GetDB())
	invites, err := svc.MyInvites(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "invites": invites, "count": len(invites)})
}

// MarkInvitesViewed clears the new-invite badge for the caller.
func MarkInvitesViewed(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	svc := services.NewMembershipService(database.GetDB())
	updated, err := svc.MarkInvitesViewed(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "updated": updated})
}

// MyJoinRequests lists the caller's own applications and their outcomes.
func MyJoinRequests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	svc := services.NewMembershipService(database.GetDB())
	requests, err := svc.MyJoinRequests(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "requests": requests, "count": len(requests)})
}

// AcceptInvite accepts an invite addressed to the caller.
func AcceptInvite(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	inviteID, err := c.ParamsInt("id")
	if err != nil || inviteID <= 0 {
		return apperr.Validation("Invalid invite id")
	}

	svc := services.NewMembershipService(database.GetDB())
	if err := svc.AcceptInvite(userID, uint(inviteID)); err != nil {
		return err
	}

	metrics.MembershipsAccepted.Inc()
	return c.JSON(fiber.Map{"success": true, "message": "Invite accepted"})
}

func RejectInvite(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	inviteID, err := c.ParamsInt("id")
	if err != nil || inviteID <= 0 {
		return apperr.Validation("Invalid invite id")
	}

	svc := services.NewMembershipService(database.GetDB())
	if err := svc.RejectInvite(userID, uint(inviteID)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Invite rejected"})
}

// AcceptJoinRequest approves a pending application. Team lead only.
func AcceptJoinRequest(c *fiber.Ctx) error {
	leadID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := c.ParamsInt("id")
	if err != nil || teamID <= 0 {
		return apperr.Validation("Invalid team id")
	}
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return apperr.Validation("Invalid user id")
	}

	svc := services.NewMembershipService(database.GetDB())
	if err := svc.AcceptRequest(leadID, uint(teamID), uint(userID)); err != nil {
		return err
	}

	metrics.MembershipsAccepted.Inc()
	hub.Notify(uint(userID), ws.Event{Type: "request.accepted", Data: fiber.Map{
		"team_id": teamID,
	}})

	return c.JSON(fiber.Map{"success": true, "message": "Join request accepted"})
}

func RejectJoinRequest(c *fiber.Ctx) error {
	leadID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := c.ParamsInt("id")
	if err != nil || teamID <= 0 {
		return apperr.Validation("Invalid team id")
	}
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return apperr.Validation("Invalid user id")
	}

	svc := services.NewMembershipService(database.GetDB())
	if err := svc.RejectRequest(leadID, uint(teamID), uint(userID)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Join request rejected"})
}

// PendingJoinRequests lists a team's open applications. Team lead only.
func PendingJoinRequests(c *fiber.Ctx) error {
	leadID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	teamID, err := c.ParamsInt("id")
	if err != nil || teamID <= 0 {
		return apperr.Validation("Invalid team id")
	}

	svc := services.NewMembershipService(database.GetDB())
	requests, err := svc.PendingRequests(leadID, uint(teamID))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "requests": requests, "count": len(requests)})
}
