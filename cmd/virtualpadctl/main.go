// virtualpadctl drives a running virtualpadd through its admin socket.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/virtualpad/server/internal/admin"
)

const defaultSocket = "/run/virtualpad/admin.sock"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var socket string

	rootCmd := &cobra.Command{
		Use:           "virtualpadctl",
		Short:         "Manage the VirtualPad server and its gamepad slots",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&socket, "socket", defaultSocket, "Admin socket path")

	client := func() *admin.Client { return admin.NewClient(socket) }
	rootCmd.AddCommand(
		newServerCmd(client),
		newPadCmd(client),
	)
	return rootCmd
}

func newServerCmd(client func() *admin.Client) *cobra.Command {
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Server lifecycle commands",
	}

	serverCmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the pad server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendAndPrint(cmd, client(), admin.Request{Command: admin.CmdServerStart})
		},
	})
	serverCmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the pad server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendAndPrint(cmd, client(), admin.Request{Command: admin.CmdServerStop})
		},
	})
	serverCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check whether the pad server is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := client().Send(admin.Request{Command: admin.CmdServerIsRunning})
			if err != nil {
				return err
			}
			running, _ := resp.Value.(bool)
			fmt.Fprintf(cmd.OutOrStdout(), "running: %v\n", running)
			return nil
		},
	})

	return serverCmd
}

func newPadCmd(client func() *admin.Client) *cobra.Command {
	padCmd := &cobra.Command{
		Use:   "pad",
		Short: "Gamepad slot commands",
	}

	var force bool
	clearCmd := &cobra.Command{
		Use:   "clear <number>",
		Short: "Clear a gamepad slot (0-7)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid gamepad number %q", args[0])
			}
			return sendAndPrint(cmd, client(), admin.Request{
				Command: admin.CmdPadClear,
				Index:   &index,
				Force:   force,
			})
		},
	}
	clearCmd.Flags().BoolVar(&force, "force", false, "Drop an active session")
	padCmd.AddCommand(clearCmd)

	padCmd.AddCommand(&cobra.Command{
		Use:   "clear-all",
		Short: "Clear every gamepad slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendAndPrint(cmd, client(), admin.Request{Command: admin.CmdPadClearAll})
		},
	})

	padCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show every slot's status and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := client().Send(admin.Request{Command: admin.CmdPadStatus})
			if err != nil {
				return err
			}
			if resp.Code != admin.CodePadStatus {
				return fmt.Errorf("server replied %s", resp.Code)
			}
			var data admin.StatusData
			if err := reparseValue(resp.Value, &data); err != nil {
				return err
			}
			return printStatus(cmd, data)
		},
	})

	padCmd.AddCommand(&cobra.Command{
		Use:   "reset-passwords [number...]",
		Short: "Assign fresh passwords to the given slots, or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			indices := make([]int, 0, len(args))
			for _, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid gamepad number %q", arg)
				}
				indices = append(indices, n)
			}
			resp, err := client().Send(admin.Request{
				Command: admin.CmdPadResetPasswords,
				Indices: indices,
			})
			if err != nil {
				return err
			}
			if resp.Code != admin.CodePadOK {
				return fmt.Errorf("server replied %s", resp.Code)
			}
			var data admin.PasswordsData
			if err := reparseValue(resp.Value, &data); err != nil {
				return err
			}
			for i, pw := range data.Passwords {
				fmt.Fprintf(cmd.OutOrStdout(), "pad %d: %s\n", i, pw)
			}
			return nil
		},
	})

	return padCmd
}

// sendAndPrint runs commands whose response is just a code.
func sendAndPrint(cmd *cobra.Command, client *admin.Client, req admin.Request) error {
	resp, err := client.Send(req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Code)
	if resp.Code == admin.CodeUnknownCommand || resp.Code == admin.CodeInvalidRequest {
		return fmt.Errorf("server rejected the command")
	}
	return nil
}

// reparseValue converts the generically decoded response value into
// its concrete shape.
func reparseValue(value any, out any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("re-encoding response value: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response value: %w", err)
	}
	return nil
}

func printStatus(cmd *cobra.Command, data admin.StatusData) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAD\tSTATUS\tNICKNAME\tMODE\tPASSWORD")
	for _, info := range data.Pads {
		password := ""
		if info.Index < len(data.Passwords) {
			password = data.Passwords[info.Index]
		}
		mode := ""
		if info.Status == "active" {
			mode = strconv.Itoa(info.Mode)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", info.Index, info.Status, info.Nickname, mode, password)
	}
	return w.Flush()
}
