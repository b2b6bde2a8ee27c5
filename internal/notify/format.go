package notify

import (
	"fmt"
	"html"
	"strings"

	"anime-watchlist/internal/models"
)

// FormatEntryList renders a numbered watchlist. Indices are the ones the
// index-based commands expect.
func FormatEntryList(title string, entries []models.Entry) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📺 <b>%s</b>\n", html.EscapeString(title)))
	for i, entry := range entries {
		sb.WriteString("\n")
		sb.WriteString(formatListItem(i, entry))
	}

	return sb.String()
}

func formatListItem(index int, entry models.Entry) string {
	favorite := ""
	if entry.Favorite {
		favorite = "⭐ "
	}
	progress := ""
	if entry.Status == models.StatusWatching {
		progress = fmt.Sprintf(" [%d/%d]", entry.EpisodesWatched, entry.TotalEpisodes)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d. %s<b>%s</b>\n", index, favorite, html.EscapeString(entry.Title)))
	sb.WriteString(fmt.Sprintf("   Status: %s%s\n", entry.Status, progress))
	sb.WriteString(fmt.Sprintf("   Priority: %s\n", entry.Preference))
	sb.WriteString(fmt.Sprintf("   Genre: %s\n", html.EscapeString(entry.Genre)))
	return sb.String()
}

// FormatSearchResults renders the entries matching keyword
func FormatSearchResults(keyword string, entries []models.Entry) string {
	if len(entries) == 0 {
		return "No matches found!"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 <b>Search Results for '%s'</b>\n", html.EscapeString(keyword)))
	for _, entry := range entries {
		sb.WriteString("\n• ")
		sb.WriteString(html.EscapeString(entry.String()))
	}
	return sb.String()
}

// FormatFavorites renders the favorite entries
func FormatFavorites(entries []models.Entry) string {
	if len(entries) == 0 {
		return "You have no favorite anime yet! Use /fav &lt;index&gt; to add one."
	}

	var sb strings.Builder
	sb.WriteString("⭐ <b>Your Favorite Anime</b>\n")
	for _, entry := range entries {
		sb.WriteString("\n• ")
		sb.WriteString(html.EscapeString(entry.String()))
	}
	return sb.String()
}

// FormatRandom renders a random suggestion
func FormatRandom(entry models.Entry) string {
	return fmt.Sprintf("🎲 <b>Random Anime Suggestion</b>\n\nWhy not watch: %s", html.EscapeString(entry.String()))
}

// FormatEntryDetails renders every attribute of an entry
func FormatEntryDetails(index int, entry models.Entry) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📖 <b>%d. %s</b>\n\n", index, html.EscapeString(entry.Title)))
	sb.WriteString(fmt.Sprintf("Status: %s\n", entry.Status))
	sb.WriteString(fmt.Sprintf("Priority: %s\n", entry.Preference))
	sb.WriteString(fmt.Sprintf("Genre: %s\n", html.EscapeString(entry.Genre)))
	sb.WriteString(fmt.Sprintf("Progress: %d/%d\n", entry.EpisodesWatched, entry.TotalEpisodes))
	sb.WriteString(fmt.Sprintf("Started: %s\n", dateOrDash(entry.StartDate)))
	sb.WriteString(fmt.Sprintf("Completed: %s\n", dateOrDash(entry.CompletedDate)))
	if entry.SourceLink != nil {
		sb.WriteString(fmt.Sprintf("Link: %s\n", html.EscapeString(*entry.SourceLink)))
	}
	if entry.Favorite {
		sb.WriteString("⭐ Favorite\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatLogs renders recent actions for admins
func FormatLogs(actions []models.Action) string {
	if len(actions) == 0 {
		return "No logs found."
	}

	var sb strings.Builder
	sb.WriteString("📜 <b>Recent Bot Logs</b>\n<pre>")
	for _, a := range actions {
		line := fmt.Sprintf("%s - ", a.CreatedAt.Format("2006-01-02 15:04:05"))
		if a.Failed() {
			line += fmt.Sprintf("ERROR - %s - %s - %s", a.Actor, a.Name, a.Error)
		} else {
			line += fmt.Sprintf("%s - %s", a.Actor, a.Name)
			if a.Details != "" {
				line += " - " + a.Details
			}
		}
		sb.WriteString(html.EscapeString(line))
		sb.WriteString("\n")
	}
	sb.WriteString("</pre>")
	return sb.String()
}

// FormatHelp renders the command reference
func FormatHelp() string {
	var sb strings.Builder

	sb.WriteString("📖 <b>Anime Watch List Bot Commands</b>\n\n")
	for _, cmd := range commandHelp {
		sb.WriteString(fmt.Sprintf("/%s - %s\n", cmd.name, html.EscapeString(cmd.usage)))
	}

	statuses := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		statuses[i] = string(s)
	}
	preferences := make([]string, len(models.Preferences))
	for i, p := range models.Preferences {
		preferences[i] = string(p)
	}

	sb.WriteString("\n📊 <b>Valid Values</b>\n")
	sb.WriteString(fmt.Sprintf("<b>Status:</b> %s\n", strings.Join(statuses, ", ")))
	sb.WriteString(fmt.Sprintf("<b>Preference:</b> %s", strings.Join(preferences, ", ")))

	return sb.String()
}

func dateOrDash(date *string) string {
	if date == nil || *date == "" {
		return "-"
	}
	return *date
}

type commandDoc struct {
	name        string
	description string
	usage       string
}

var commandHelp = []commandDoc{
	{"add", "Add a new anime", "Add anime: /add title | status | preference | episodes | genre | source_link"},
	{"list", "Show your anime list", "Show your anime list"},
	{"progress", "Update episodes watched", "Update progress: /progress <index> <episodes>"},
	{"status", "Change the status of an anime", "Change status: /status <index> <status>"},
	{"fav", "Toggle favorite", "Toggle favorite: /fav <index>"},
	{"delete", "Remove an anime", "Remove anime: /delete <index>"},
	{"details", "Show every detail of an anime", "Show details: /details <index>"},
	{"search", "Search in your list", "Search anime: /search <keyword>"},
	{"favorites", "Show your favorites", "Show your favorite anime"},
	{"random", "Get a random suggestion", "Get a random anime suggestion"},
	{"help", "Show the help message", "Show this help message"},
}
