package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rolodex/internal/events"
	"github.com/alfredjeanlab/rolodex/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream export events from NATS",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("nats-url")
		if url == "" {
			url = os.Getenv("ROLODEX_NATS_URL")
		}
		if url == "" {
			url = loadSettingsOnce().NATSURL
		}
		if url == "" {
			return errors.New("no NATS server: set --nats-url or ROLODEX_NATS_URL")
		}

		sub, err := events.NewNATSSubscriber(url,
			nats.Name("rx-watch"),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					warnf("disconnected from NATS: %v", err)
				}
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(events.TopicAll)
		if err != nil {
			return err
		}
		defer cancel()

		fmt.Fprintln(os.Stderr, ui.RenderMuted("watching "+events.TopicAll+" on "+url))
		out := cmd.OutOrStdout()
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case data, ok := <-ch:
				if !ok {
					return nil
				}
				if jsonOutput {
					fmt.Fprintln(out, string(data))
					continue
				}
				fmt.Fprintln(out, events.Summary(data))
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("nats-url", "", "NATS server URL (default: $ROLODEX_NATS_URL or config nats_url)")
}
