package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Strob0t/TaskForge/internal/service"
)

func workflowCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Inspect and manage workflows",
	}

	var (
		projectID string
		asJSON    bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List workflows, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStore(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := service.NewWorkflowService(store, service.NewEventPublisher(nil, nil, nil))
			wfs, err := svc.List(cmd.Context(), projectID)
			if err != nil {
				return fmt.Errorf("list workflows: %w", err)
			}
			return render(cmd.OutOrStdout(), asJSON, wfs, "ID\tPROJECT\tNAME\tDEFAULT\tUPDATED", func(w io.Writer) {
				for i := range wfs {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
						wfs[i].ID, wfs[i].ProjectID, wfs[i].Name, wfs[i].IsDefault, wfs[i].UpdatedAt.Format(time.RFC3339))
				}
			})
		},
	}
	list.Flags().StringVarP(&projectID, "project", "p", "", "only list workflows of this project")
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON even on a terminal")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "promote <workflow-id>",
		Short: "Make a workflow the default of its project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, events, cleanup, err := openMutatingStore(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := service.NewWorkflowService(store, events)
			w, err := svc.Promote(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("promote workflow: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Workflow %s (%s) is now the default of project %s\n", w.ID, w.Name, w.ProjectID)
			return nil
		},
	})

	return cmd
}
