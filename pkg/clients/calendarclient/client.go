// Package calendarclient mirrors scheduled shifts to a Google Calendar.
// It implements the store.CalendarService interface; the rest of the
// application never touches the Calendar API directly.
package calendarclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jakechorley/shiftbook/internal/config"
	"github.com/jakechorley/shiftbook/pkg/core/model"
	"github.com/jakechorley/shiftbook/pkg/core/store"
	"github.com/jakechorley/shiftbook/pkg/utils"
)

// Client wraps the Google Calendar API client for one target calendar
type Client struct {
	service    *calendar.Service
	token      *oauth2.Token
	calendarID string
}

// NewClient creates a new Calendar client using OAuth credentials and performs OAuth flow if needed
// Tokens are persisted to disk for the given environment
// calendarID may be empty, in which case the user's primary calendar is used
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, env, calendarID string) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	// Get token (will perform OAuth flow if needed, tokens are persisted to disk)
	token, err := utils.GetTokenWithFlow(ctx, oauthConfig, env)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token: %w", err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	if calendarID == "" {
		calendarID = "primary"
	}

	return &Client{
		service:    service,
		token:      token,
		calendarID: calendarID,
	}, nil
}

// Service returns the underlying calendar service for direct API access
func (c *Client) Service() *calendar.Service {
	return c.service
}

// Token returns the OAuth token used by this client
func (c *Client) Token() *oauth2.Token {
	return c.token
}

// CreateEvent creates a calendar event for the shift and returns its event id
func (c *Client) CreateEvent(ctx context.Context, shift *model.ScheduledShift) (string, error) {
	event := &calendar.Event{
		Summary:     eventSummary(shift),
		Description: shift.Notes,
		Location:    shift.SnapshotLocationName,
	}

	if shift.SnapshotDuration.Kind == model.DurationAllDay {
		// All-day events use whole dates; the end date is exclusive
		event.Start = &calendar.EventDateTime{Date: shift.Date.String()}
		event.End = &calendar.EventDateTime{Date: shift.Date.AddDays(1).String()}
	} else {
		event.Start = &calendar.EventDateTime{DateTime: shift.ActualStart().Format(time.RFC3339)}
		event.End = &calendar.EventDateTime{DateTime: shift.ActualEnd().Format(time.RFC3339)}
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	return created.Id, nil
}

// DeleteEvent removes a previously created event
// Deleting an event that is already gone is not an error
func (c *Client) DeleteEvent(ctx context.Context, externalID string) error {
	err := c.service.Events.Delete(c.calendarID, externalID).Context(ctx).Do()
	if err != nil {
		if gerr, ok := err.(*googleapi.Error); ok &&
			(gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
			return nil
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListEvents returns the events intersecting the given time range
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]store.RawEvent, error) {
	var events []store.RawEvent
	pageToken := ""
	for {
		call := c.service.Events.List(c.calendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		for _, item := range resp.Items {
			raw, err := toRawEvent(item)
			if err != nil {
				return nil, err
			}
			events = append(events, raw)
		}

		if resp.NextPageToken == "" {
			return events, nil
		}
		pageToken = resp.NextPageToken
	}
}

// AuthStatus reports whether the client can reach its target calendar
func (c *Client) AuthStatus(ctx context.Context) error {
	if _, err := c.service.Calendars.Get(c.calendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to access calendar %s: %w", c.calendarID, err)
	}
	return nil
}

// eventSummary renders the event title from the shift's snapshot data
func eventSummary(shift *model.ScheduledShift) string {
	if shift.SnapshotSymbol == "" {
		return shift.SnapshotTitle
	}
	return fmt.Sprintf("[%s] %s", shift.SnapshotSymbol, shift.SnapshotTitle)
}

// toRawEvent maps an API event to the transport-neutral form
// All-day events carry dates instead of instants
func toRawEvent(item *calendar.Event) (store.RawEvent, error) {
	start, err := eventTime(item.Start)
	if err != nil {
		return store.RawEvent{}, fmt.Errorf("failed to parse start of event %s: %w", item.Id, err)
	}
	end, err := eventTime(item.End)
	if err != nil {
		return store.RawEvent{}, fmt.Errorf("failed to parse end of event %s: %w", item.Id, err)
	}

	return store.RawEvent{
		ExternalID: item.Id,
		Summary:    item.Summary,
		Start:      start,
		End:        end,
	}, nil
}

func eventTime(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, nil
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	return time.Parse("2006-01-02", edt.Date)
}
