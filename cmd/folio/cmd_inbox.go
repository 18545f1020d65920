package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"craftfolio/internal/inbox"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Private messaging",
}

var inboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		threads, err := svc.Inbox.Threads(cmd.Context())
		if err != nil {
			return err
		}
		me := svc.Session.Current().Username
		for _, t := range threads {
			cp := t.Counterpart(me)
			flags := ""
			if t.IsRequest {
				flags = " [request]"
			}
			if t.UnreadCount > 0 {
				flags += fmt.Sprintf(" [%d unread]", t.UnreadCount)
			}
			fmt.Printf("%-5d %-25s%s  %s\n", t.ID, cp.Label(), flags, t.Preview())
		}
		if len(threads) == 0 {
			fmt.Println("No private conversations yet.")
		}
		return nil
	},
}

var inboxStartCmd = &cobra.Command{
	Use:   "start [username]",
	Short: "Start (or reopen) a conversation with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		thread, err := svc.Inbox.Start(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Thread %d with %s\n", thread.ID, args[0])
		return nil
	},
}

var inboxWatch bool

var inboxMessagesCmd = &cobra.Command{
	Use:   "messages [thread-id]",
	Short: "Show a conversation, optionally following new messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid thread id %q", args[0])
		}
		me := svc.Session.Current().Username

		printAll := func(messages []inbox.Message) {
			for _, m := range messages {
				who := m.SenderUsername
				if m.Mine(me) {
					who = "you"
				}
				fmt.Printf("%s: %s\n", who, m.Text)
			}
		}

		if !inboxWatch {
			messages, err := svc.Inbox.Messages(cmd.Context(), id)
			if err != nil {
				return err
			}
			printAll(messages)
			return nil
		}

		// Follow mode: print the conversation and poll until interrupted.
		seen := 0
		poller := inbox.NewPoller(svc.Inbox, id, func(messages []inbox.Message) {
			if len(messages) > seen {
				printAll(messages[seen:])
				seen = len(messages)
			}
		})
		poller.Start(cmd.Context())

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		poller.Stop()
		return nil
	},
}

var inboxSendCmd = &cobra.Command{
	Use:   "send [thread-id] [text]",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid thread id %q", args[0])
		}
		composer := inbox.NewComposer(svc.Inbox, id)
		composer.Text = strings.Join(args[1:], " ")
		if _, err := composer.Send(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Sent.")
		return nil
	},
}

var inboxYes bool

func threadActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [thread-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices()
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid thread id %q", args[0])
			}
			switch action {
			case "accept":
				thread, err := svc.Inbox.Accept(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !thread.IsRequest {
					fmt.Println("Request accepted.")
				}
				return nil
			case "ignore":
				if err := svc.Inbox.Ignore(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Println("Request ignored.")
				return nil
			case "block":
				if err := svc.Inbox.Block(cmd.Context(), id, stdinConfirmer{}); err != nil {
					return err
				}
				return nil
			}
			return fmt.Errorf("unknown action %q", action)
		},
	}
}

// stdinConfirmer asks on the terminal; --yes answers for scripts.
type stdinConfirmer struct{}

func (stdinConfirmer) Confirm(prompt string) bool {
	if inboxYes {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	inboxMessagesCmd.Flags().BoolVarP(&inboxWatch, "watch", "w", false, "keep polling for new messages")

	blockCmd := threadActionCmd("block", "Block the other participant", "block")
	blockCmd.Flags().BoolVarP(&inboxYes, "yes", "y", false, "skip the confirmation prompt")

	inboxCmd.AddCommand(inboxListCmd)
	inboxCmd.AddCommand(inboxStartCmd)
	inboxCmd.AddCommand(inboxMessagesCmd)
	inboxCmd.AddCommand(inboxSendCmd)
	inboxCmd.AddCommand(threadActionCmd("accept", "Accept a message request", "accept"))
	inboxCmd.AddCommand(threadActionCmd("ignore", "Ignore a message request", "ignore"))
	inboxCmd.AddCommand(blockCmd)
}
