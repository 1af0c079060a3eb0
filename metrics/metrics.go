package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TeamsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackmate_teams_created_total", Help: "Total teams created"},
	)
	InvitesSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackmate_invites_sent_total", Help: "Total team invites sent"},
	)
	MembershipsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackmate_memberships_accepted_total", Help: "Total memberships accepted"},
	)
	MessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackmate_messages_sent_total", Help: "Total messages sent"},
	)
	HackathonRegistrations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackmate_hackathon_registrations_total", Help: "Total hackathon registrations"},
	)
)

func Register() {
	prometheus.MustRegister(TeamsCreated, InvitesSent, MembershipsAccepted, MessagesSent, HackathonRegistrations)
}
