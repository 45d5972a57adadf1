package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Discord posts run outcomes to webhook URLs. An empty URL disables that channel.
type Discord struct {
	SuccessURL string
	ErrorURL   string
	Client     *http.Client
}

// NewDiscordFromEnv reads the webhook URLs from the environment.
func NewDiscordFromEnv() *Discord {
	return &Discord{
		SuccessURL: properties.DiscordSuccessNotificationUrl(),
		ErrorURL:   properties.DiscordErrorNotificationUrl(),
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *Discord) send(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}
	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}

func (d *Discord) SendError(errorMessage string) error {
	return d.send(d.ErrorURL, DiscordEmbed{
		Title:       "🚨 Error Notification",
		Description: fmt.Sprintf("Hopper dataset run failed.\n\n%s", errorMessage),
		Color:       16711680, // red
	})
}

func (d *Discord) SendSuccess(successMessage string) error {
	return d.send(d.SuccessURL, DiscordEmbed{
		Title:       "✅ Success Notification",
		Description: successMessage,
		Color:       65280, // green
	})
}

func (d *Discord) SendWarn(warnMessage string) error {
	return d.send(d.SuccessURL, DiscordEmbed{
		Title:       "⚠️ Warning Notification",
		Description: warnMessage,
		Color:       16776960, // yellow
	})
}
