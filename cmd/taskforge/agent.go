package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Strob0t/TaskForge/internal/domain/agent"
	"github.com/Strob0t/TaskForge/internal/service"
)

func agentCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Maintain the agent directory used by the assignment gate",
	}

	var (
		name     string
		role     string
		inactive bool
	)
	register := &cobra.Command{
		Use:   "register",
		Short: "Register an agent",
		Example: `  taskforge agent register --name lead-1 --role tech_lead
  taskforge agent register --name coder-2 --role developer --inactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStore(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := service.NewAgentService(store).Register(cmd.Context(), agent.RegisterRequest{
				Name:     name,
				Role:     role,
				IsActive: !inactive,
			})
			if err != nil {
				return fmt.Errorf("register agent: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Agent registered: %s (id=%s, role=%s, active=%t)\n", a.Name, a.ID, a.Role, a.IsActive)
			return nil
		},
	}
	register.Flags().StringVar(&name, "name", "", "agent name (required)")
	register.Flags().StringVar(&role, "role", agent.RoleTechLead, "agent role")
	register.Flags().BoolVar(&inactive, "inactive", false, "register the agent as inactive")
	_ = register.MarkFlagRequired("name")
	cmd.AddCommand(register)

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List agents and whether assignment is currently possible",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStore(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := service.NewAgentService(store)
			agents, err := svc.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list agents: %w", err)
			}
			if err := render(cmd.OutOrStdout(), asJSON, agents, "ID\tNAME\tROLE\tACTIVE", func(w io.Writer) {
				for i := range agents {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", agents[i].ID, agents[i].Name, agents[i].Role, agents[i].IsActive)
				}
			}); err != nil {
				return err
			}

			ok, err := svc.TechLeadAvailable(cmd.Context())
			if err != nil {
				return fmt.Errorf("check tech lead: %w", err)
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no active tech_lead agent, task assignment will be rejected")
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON even on a terminal")
	cmd.AddCommand(list)

	cmd.AddCommand(setActiveCmd(load, "activate", true))
	cmd.AddCommand(setActiveCmd(load, "deactivate", false))

	return cmd
}

func setActiveCmd(load configLoader, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <agent-id>",
		Short: fmt.Sprintf("Mark an agent as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := service.NewAgentService(store).SetActive(cmd.Context(), args[0], active); err != nil {
				return fmt.Errorf("%s agent: %w", use, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Agent %s %sd\n", args[0], use)
			return nil
		},
	}
}
