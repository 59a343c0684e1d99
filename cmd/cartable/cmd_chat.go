package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/cartable/internal/chatbot"
	"github.com/user/cartable/internal/compose"
	"github.com/user/cartable/internal/directory"
	"github.com/user/cartable/internal/nlp"
	"github.com/user/cartable/internal/session"
	"github.com/user/cartable/internal/types"
)

var chatContact string

func init() {
	chatCmd.Flags().StringVar(&chatContact, "contact", "", "phone number to authenticate as")
	chatCmd.MarkFlagRequired("contact")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation on stdin",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	dir, err := directory.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer dir.Close()

	classifier, err := nlp.NewClassifier(cfg.ModelPath())
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}

	// No synthesizer in the terminal; voice requests fall back to text.
	engine := chatbot.New(
		nlp.NewInterpreter(classifier),
		session.New(),
		dir,
		compose.New(nil, cfg.Language),
	)

	sender := types.NewSenderKey("cli", chatContact)
	ctx := context.Background()

	fmt.Println("Tapez votre message (Ctrl-D pour quitter).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		reply := engine.HandleMessage(ctx, sender, text)
		fmt.Println(reply.Text)
	}
	return scanner.Err()
}
