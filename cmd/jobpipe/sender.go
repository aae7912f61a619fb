package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var senderCmd = &cobra.Command{
	Use:   "sender",
	Short: "Response sender subcommands",
}

var senderTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message",
	Long:  "Sends a test message to responder.recipient using the configured sender.",
	RunE:  runSenderTest,
}

func init() {
	rootCmd.AddCommand(senderCmd)
	senderCmd.AddCommand(senderTestCmd)
}

func runSenderTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sender := setupSender(cfg.Responder.Sender, logger)
	body := fmt.Sprintf("Test message from jobpipe %s, sent at %s.", version, time.Now().Format(time.RFC1123))
	if err := sender.Send(ctx, cfg.Responder.Recipient, "jobpipe test message", body); err != nil {
		return fmt.Errorf("test message failed: %w", err)
	}
	logger.Info("test message sent", "sender", cfg.Responder.Sender.Type)
	return nil
}
