package notify

import (
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/service"
)

const addUsage = "Please provide anime details in the format: /add title | status | preference | episodes | genre | source_link"

var errUsage = errors.New("usage")

// Commands turns command payloads into replies. It holds no chat SDK
// types, so it can be driven directly in tests.
type Commands struct {
	svc      *service.WatchlistService
	activity *service.ActivityLogger
	isAdmin  func(userID int64) bool
}

// NewCommands creates a new Commands
func NewCommands(svc *service.WatchlistService, activity *service.ActivityLogger, isAdmin func(int64) bool) *Commands {
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Commands{
		svc:      svc,
		activity: activity,
		isAdmin:  isAdmin,
	}
}

// Help handles /help and /start
func (c *Commands) Help() string {
	return FormatHelp()
}

// Add handles /add title | status | preference | episodes [| genre [| source_link]]
func (c *Commands) Add(actor models.Actor, payload string) string {
	input, err := ParseAddPayload(payload)
	if err != nil {
		if errors.Is(err, errUsage) {
			return addUsage
		}
		return c.errorReply(err)
	}

	entry, err := c.svc.AddEntry(actor, input)
	if err != nil {
		return c.errorReply(err)
	}
	return fmt.Sprintf("Added <b>%s</b> to your list!", html.EscapeString(entry.Title))
}

// List handles /list
func (c *Commands) List(actor models.Actor) string {
	entries, err := c.svc.List(actor)
	if err != nil {
		return c.errorReply(err)
	}
	if len(entries) == 0 {
		return "Your watchlist is empty!"
	}
	return FormatEntryList("Your Anime Watchlist", entries)
}

// Progress handles /progress <index> <episodes>
func (c *Commands) Progress(actor models.Actor, payload string) string {
	nums, err := parseInts(payload, 2)
	if err != nil {
		return "Please provide valid numbers for index and episodes! Usage: /progress &lt;index&gt; &lt;episodes&gt;"
	}

	entry, err := c.svc.UpdateProgress(actor, nums[0], nums[1])
	if err != nil {
		return c.errorReply(err)
	}
	if entry.Status == models.StatusCompleted && entry.EpisodesWatched == entry.TotalEpisodes {
		return fmt.Sprintf("Progress updated successfully! <b>%s</b> is now completed 🎉", html.EscapeString(entry.Title))
	}
	return "Progress updated successfully!"
}

// Status handles /status <index> <status>
func (c *Commands) Status(actor models.Actor, payload string) string {
	fields := strings.Fields(payload)
	if len(fields) < 2 {
		return "Usage: /status &lt;index&gt; &lt;status&gt;"
	}
	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return "Please provide a valid number for index!"
	}

	entry, err := c.svc.UpdateStatus(actor, index, strings.Join(fields[1:], " "))
	if err != nil {
		return c.errorReply(err)
	}
	return fmt.Sprintf("<b>%s</b> is now %s.", html.EscapeString(entry.Title), entry.Status)
}

// Favorite handles /fav <index>
func (c *Commands) Favorite(actor models.Actor, payload string) string {
	nums, err := parseInts(payload, 1)
	if err != nil {
		return "Usage: /fav &lt;index&gt;"
	}

	entry, err := c.svc.ToggleFavorite(actor, nums[0])
	if err != nil {
		return c.errorReply(err)
	}
	if entry.Favorite {
		return fmt.Sprintf("⭐ <b>%s</b> added to favorites!", html.EscapeString(entry.Title))
	}
	return fmt.Sprintf("<b>%s</b> removed from favorites.", html.EscapeString(entry.Title))
}

// Delete handles /delete <index>
func (c *Commands) Delete(actor models.Actor, payload string) string {
	nums, err := parseInts(payload, 1)
	if err != nil {
		return "Usage: /delete &lt;index&gt;"
	}

	entry, err := c.svc.Delete(actor, nums[0])
	if err != nil {
		return c.errorReply(err)
	}
	return fmt.Sprintf("Removed <b>%s</b> from your list.", html.EscapeString(entry.Title))
}

// Details handles /details <index>
func (c *Commands) Details(actor models.Actor, payload string) string {
	nums, err := parseInts(payload, 1)
	if err != nil {
		return "Usage: /details &lt;index&gt;"
	}

	entry, err := c.svc.Details(actor, nums[0])
	if err != nil {
		return c.errorReply(err)
	}
	return FormatEntryDetails(nums[0], entry)
}

// Search handles /search <keyword>
func (c *Commands) Search(actor models.Actor, payload string) string {
	keyword := strings.TrimSpace(payload)
	results, err := c.svc.Search(actor, keyword)
	if err != nil {
		return c.errorReply(err)
	}
	return FormatSearchResults(keyword, results)
}

// Favorites handles /favorites
func (c *Commands) Favorites(actor models.Actor) string {
	entries, err := c.svc.Favorites(actor)
	if err != nil {
		return c.errorReply(err)
	}
	return FormatFavorites(entries)
}

// Random handles /random
func (c *Commands) Random(actor models.Actor) string {
	entry, ok, err := c.svc.PickRandom(actor)
	if err != nil {
		return c.errorReply(err)
	}
	if !ok {
		return "No unwatched anime in your list!"
	}
	return FormatRandom(entry)
}

// Logs handles /logs [lines], admins only
func (c *Commands) Logs(actor models.Actor, payload string) string {
	if !c.isAdmin(actor.ID) {
		c.activity.Record(actor, "View Logs Denied", "", nil)
		return "You don't have permission to view logs!"
	}

	lines := service.DefaultLogLines
	if payload = strings.TrimSpace(payload); payload != "" {
		n, err := strconv.Atoi(payload)
		if err != nil {
			return "Usage: /logs [lines]"
		}
		lines = n
	}

	actions, err := c.activity.Recent(lines)
	if err != nil {
		c.activity.Record(actor, "View Logs Failed", "", err)
		return "Error retrieving logs: " + html.EscapeString(err.Error())
	}
	return FormatLogs(actions)
}

func (c *Commands) errorReply(err error) string {
	if msg, ok := service.UserMessage(err); ok {
		return html.EscapeString(msg)
	}
	log.Printf("Command failed: %v", err)
	return "An error occurred: " + html.EscapeString(err.Error())
}

// ParseAddPayload splits "title | status | preference | episodes | genre | link"
// into an EntryInput. Only the episode count is checked here.
func ParseAddPayload(payload string) (models.EntryInput, error) {
	if strings.TrimSpace(payload) == "" {
		return models.EntryInput{}, errUsage
	}

	parts := strings.Split(payload, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 {
		return models.EntryInput{}, &models.ValidationError{
			Message: "Not enough information provided. Format: /add title | status | preference | episodes | genre | source_link",
		}
	}

	episodes, err := strconv.Atoi(parts[3])
	if err != nil {
		return models.EntryInput{}, &models.ValidationError{
			Field:   "total_episodes",
			Message: "Please provide a valid number of episodes!",
		}
	}

	input := models.EntryInput{
		Title:         parts[0],
		Status:        parts[1],
		Preference:    parts[2],
		TotalEpisodes: episodes,
	}
	if len(parts) > 4 {
		input.Genre = parts[4]
	}
	if len(parts) > 5 {
		input.SourceLink = parts[5]
	}
	return input, nil
}

// parseInts reads exactly n whitespace separated integers
func parseInts(payload string, n int) ([]int, error) {
	fields := strings.Fields(payload)
	if len(fields) != n {
		return nil, errUsage
	}
	nums := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		nums[i] = v
	}
	return nums, nil
}
