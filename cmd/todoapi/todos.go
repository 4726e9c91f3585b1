package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/todoapi/internal/client"
)

// newClient builds an API client from the persistent --addr and --timeout flags.
func newClient(cmd *cobra.Command) *client.Client {
	addr, _ := cmd.Flags().GetString("addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.New(addr, timeout)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", arg)
	}
	return id, nil
}

var listCmd = &cobra.Command{
	Use:          "list",
	Aliases:      []string{"ls"},
	Short:        "List all todos",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()

		todos, err := c.List(cmd.Context())
		if err != nil {
			return err
		}
		printList(cmd.OutOrStdout(), todos)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:          "get <id>",
	Short:        "Show a single todo",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		c := newClient(cmd)
		defer c.Close()

		todo, err := c.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTodo(todo))
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:          "add <text>...",
	Short:        "Create a todo",
	Long:         `Create a todo. All arguments are joined with spaces to form the text.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()

		todo, err := c.Create(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), fmt.Sprintf("Added #%d", todo.ID))
		fmt.Fprintln(cmd.OutOrStdout(), renderTodo(todo))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a todo's text or done flag",
	Long: `Update a todo. Only the flags given are sent; a blank --text is
ignored by the server.

Example:
  todoapi edit 3 --text "Build a REST API in Go"
  todoapi edit 3 --done=false`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var text *string
		var done *bool
		if cmd.Flags().Changed("text") {
			v, _ := cmd.Flags().GetString("text")
			text = &v
		}
		if cmd.Flags().Changed("done") {
			v, _ := cmd.Flags().GetBool("done")
			done = &v
		}
		if text == nil && done == nil {
			return fmt.Errorf("nothing to update: pass --text and/or --done")
		}

		c := newClient(cmd)
		defer c.Close()

		todo, err := c.Update(cmd.Context(), id, text, done)
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), fmt.Sprintf("Updated #%d", todo.ID))
		fmt.Fprintln(cmd.OutOrStdout(), renderTodo(todo))
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:          "toggle <id>",
	Short:        "Flip a todo's done flag",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		c := newClient(cmd)
		defer c.Close()

		todo, err := c.Toggle(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTodo(todo))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:          "rm <id>",
	Aliases:      []string{"delete"},
	Short:        "Delete a todo",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		c := newClient(cmd)
		defer c.Close()

		todo, err := c.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), fmt.Sprintf("Deleted #%d %s", todo.ID, todo.Text))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Delete all completed todos",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(cmd)
		defer c.Close()

		msg, err := c.ClearCompleted(cmd.Context())
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	editCmd.Flags().String("text", "", "new text")
	editCmd.Flags().Bool("done", false, "new done flag")

	rootCmd.AddCommand(listCmd, getCmd, addCmd, editCmd, toggleCmd, rmCmd, clearCmd)
}
