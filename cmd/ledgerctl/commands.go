package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// services lo que necesitan los comandos; close libera la conexión.
type services struct {
	reconciler *inventory.Reconciler
	adjuster   *inventory.AbsoluteAdjuster
	migrate    func(ctx context.Context) ([]string, error)
	close      func()
}

type servicesFactory func(ctx context.Context) (*services, error)

// errDriftFound hace que drift termine con código distinto de cero si la caché está desviada.
var errDriftFound = errors.New("saldo en caché desviado del ledger")

func newRootCmd(factory servicesFactory) *cobra.Command {
	var svc *services

	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Administración del ledger de stock",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := factory(cmd.Context())
			if err != nil {
				return fmt.Errorf("inicializar servicios: %w", err)
			}
			svc = s
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if svc != nil && svc.close != nil {
				svc.close()
			}
		},
	}

	root.AddCommand(
		newMigrateCmd(func() *services { return svc }),
		newRebuildCmd(func() *services { return svc }),
		newDriftCmd(func() *services { return svc }),
		newSetAbsoluteCmd(func() *services { return svc }),
	)
	return root
}

func newMigrateCmd(svc func() *services) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applied, err := svc().migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				cmd.Println("sin migraciones pendientes")
				return nil
			}
			for _, v := range applied {
				cmd.Println("aplicada", v)
			}
			return nil
		},
	}
}

func newRebuildCmd(svc func() *services) *cobra.Command {
	var itemID string
	cmd := &cobra.Command{
		Use:   "rebuild <locationId>",
		Short: "Recalcula saldos desde el ledger (un item con --item, o toda la ubicación)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var results []*inventory.RebuildResult
			if itemID != "" {
				r, err := svc().reconciler.Rebuild(cmd.Context(), args[0], itemID)
				if err != nil {
					return err
				}
				results = append(results, r)
			} else {
				rs, err := svc().reconciler.RebuildLocation(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				results = rs
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ITEM\tANTERIOR\tNUEVO\tMOVIMIENTOS\tDESVIADO")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", r.ItemID, r.PreviousBalance, r.NewBalance, r.EntryCount, r.Drifted())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&itemID, "item", "", "reconstruir solo este item")
	return cmd
}

func newDriftCmd(svc func() *services) *cobra.Command {
	return &cobra.Command{
		Use:   "drift <locationId> <itemId>",
		Short: "Compara el saldo en caché con el reproducido desde el ledger (solo lectura)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := svc().reconciler.Drift(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			cmd.Printf("caché=%s ledger=%s diferencia=%s movimientos=%d\n",
				r.CachedBalance, r.ReplayedBalance, r.Drift, r.EntryCount)
			if !r.InSync() {
				return errDriftFound
			}
			return nil
		},
	}
}

func newSetAbsoluteCmd(svc func() *services) *cobra.Command {
	var reason, actor string
	cmd := &cobra.Command{
		Use:   "set-absolute <locationId> <itemId> <target>",
		Short: "Fija el saldo a un valor absoluto mediante un ADJUSTMENT",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := decimal.NewFromString(args[2])
			if err != nil {
				return domain.Errorf(domain.CodeValidation, "saldo objetivo inválido: %q", args[2])
			}
			res, err := svc().adjuster.SetAbsolute(cmd.Context(), inventory.SetAbsoluteInput{
				LocationID:    args[0],
				ItemID:        args[1],
				TargetBalance: target,
				Reason:        reason,
				ActorID:       actor,
			})
			if err != nil {
				return err
			}
			if res.Entry == nil {
				cmd.Printf("sin cambios: saldo %s\n", res.NewBalance)
				return nil
			}
			cmd.Printf("saldo %s -> %s (movimiento %s)\n", res.PreviousBalance, res.NewBalance, res.Entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "motivo del ajuste")
	cmd.Flags().StringVar(&actor, "actor", "ledgerctl", "identificador de quien ajusta")
	return cmd
}
