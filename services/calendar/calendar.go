// Package calendar connects a doctor's Google account and creates Meet-backed
// calendar events for online consultations.
package calendar

import (
	"context"
	"fmt"
	"time"

	"curaconnect/config"
	"curaconnect/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// MeetingScheduler turns a paid online appointment into a conference link.
type MeetingScheduler interface {
	// AuthURL builds the consent URL; state carries the doctor id through
	// the OAuth round trip.
	AuthURL(state string) string
	// Exchange trades the callback code for tokens.
	Exchange(ctx context.Context, code string) (*models.GoogleToken, error)
	// CreateMeetEvent inserts a calendar event with a Meet conference for
	// the appointment and returns the meeting link.
	CreateMeetEvent(ctx context.Context, token *models.GoogleToken, appt *models.Appointment) (string, error)
}

// GoogleCalendar implements MeetingScheduler against the Calendar API.
type GoogleCalendar struct {
	conf *oauth2.Config
}

// NewGoogleCalendar builds the scheduler from the process configuration.
func NewGoogleCalendar() *GoogleCalendar {
	cfg := config.AppConfig
	return &GoogleCalendar{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{gcal.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleCalendar) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (g *GoogleCalendar) Exchange(ctx context.Context, code string) (*models.GoogleToken, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return &models.GoogleToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}, nil
}

func (g *GoogleCalendar) CreateMeetEvent(ctx context.Context, token *models.GoogleToken, appt *models.Appointment) (string, error) {
	src := g.conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	})
	svc, err := gcal.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return "", fmt.Errorf("failed to build calendar client: %w", err)
	}

	start, err := time.Parse("2006-01-02T15:04", appt.Date+"T"+appt.Start)
	if err != nil {
		return "", fmt.Errorf("bad appointment start: %w", err)
	}
	end, err := time.Parse("2006-01-02T15:04", appt.Date+"T"+appt.End)
	if err != nil {
		return "", fmt.Errorf("bad appointment end: %w", err)
	}

	event := &gcal.Event{
		Summary:     "Teleconsultation Appointment",
		Description: "Online healthcare appointment",
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             appt.ID,
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := svc.Events.Insert("primary", event).ConferenceDataVersion(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return created.HangoutLink, nil
}
