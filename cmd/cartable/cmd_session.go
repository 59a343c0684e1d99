package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionClearCmd, sessionVoiceCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage dialogue sessions on the running daemon",
}

// daemonPost sends a form post to the daemon's HTTP server and returns the
// response body. Sessions live in the daemon's memory, so the CLI reaches
// them over the webhook surface rather than touching state directly.
func daemonPost(endpoint, from string) (string, error) {
	cfg := loadConfig()
	addr := cfg.HTTP.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	resp, err := http.PostForm("http://"+addr+endpoint, url.Values{"From": {from}})
	if err != nil {
		return "", fmt.Errorf("reach daemon: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <sender>",
	Short: "Reset a sender's dialogue session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := daemonPost("/session/clear", args[0])
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var sessionVoiceCmd = &cobra.Command{
	Use:   "voice <sender>",
	Short: "Request a voice reply for a sender's next answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := daemonPost("/voice", args[0])
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}
