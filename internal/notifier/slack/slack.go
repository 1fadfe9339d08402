package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/metrics"
	"github.com/sundaysquad/sundaysquad/internal/notifier"
	"github.com/sundaysquad/sundaysquad/internal/results"
	"github.com/sundaysquad/sundaysquad/internal/sport"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendApprovalRequest(game *league.Game, record *results.ResultRecord, entries []results.PlayerStatEntry, dryRun bool) error {
	msg := s.formatApprovalRequest(game, record, entries)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendResultFinalized(game *league.Game, record *results.ResultRecord, dryRun bool) error {
	msg := s.formatResultFinalized(game, record)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(totals []league.PlayerTotals, dryRun bool) error {
	msg := s.formatLeaderboard(totals)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(totals []league.PlayerTotals) (any, error) {
	return s.formatLeaderboard(totals), nil
}

// FormatPendingApprovalsResponse formats a pending approvals message for a slash command response.
func (s *Notifier) FormatPendingApprovalsResponse(playerID string, items []results.PendingApproval) (any, error) {
	return s.formatPendingApprovals(playerID, items), nil
}

// scoreLine renders a score payload with field names in deterministic order.
func scoreLine(score results.ScorePayload) string {
	fields := make([]string, 0, len(score))
	for name := range score {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, fmt.Sprintf("%s: %d", name, int(score[name])))
	}
	return strings.Join(parts, " | ")
}

// formatApprovalRequest creates the Slack message asking the squad to approve a submitted result.
func (s *Notifier) formatApprovalRequest(game *league.Game, record *results.ResultRecord, entries []results.PlayerStatEntry) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "Result submitted - your approval is needed!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s at %s\nScore: %s", game.Sport, game.Venue, scoreLine(record.Score))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	var attendedNames []string
	for _, entry := range entries {
		if entry.Attended {
			attendedNames = append(attendedNames, fmt.Sprintf("- %s", entry.PlayerID))
		}
	}
	if len(attendedNames) > 0 {
		playersText := "Waiting on:\n" + strings.Join(attendedNames, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playersText, true, false), nil, nil))
	}

	if cfg, ok := sport.ResultSchema(game.Sport); ok && len(attendedNames) > 0 {
		needed := int(math.Ceil(cfg.ApprovalThreshold * float64(len(attendedNames))))
		contextText := fmt.Sprintf("%d of %d approvals finalize this result", needed, len(attendedNames))
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatResultFinalized creates the Slack message for a finalized result.
func (s *Notifier) formatResultFinalized(game *league.Game, record *results.ResultRecord) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "Result is final!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s at %s\nFinal score: %s", game.Sport, game.Venue, scoreLine(record.Score))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", "Stats have been added to the leaderboard.", true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(totals []league.PlayerTotals) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "Squad Leaderboard", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(totals) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No finalized results yet. Go play some games!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, row := range totals {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> Played: %d | Attendance: %.0f%% | Approvals given: %d",
			rank,
			medal,
			row.PlayerName,
			row.GamesPlayed,
			row.AttendanceRate,
			row.ResultsApproved,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPendingApprovals creates a Slack message listing the results awaiting a player's vote.
func (s *Notifier) formatPendingApprovals(playerID string, items []results.PendingApproval) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "Results waiting for your vote", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(items) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Nothing to approve. You're all caught up!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, item := range items {
		itemText := fmt.Sprintf("%s at %s\n> Score: %s", item.Sport, item.Venue, scoreLine(item.Record.Score))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", itemText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
