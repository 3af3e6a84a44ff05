package cli

import (
	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/loan-document-verifier/internal/requirements"
)

func (a *app) newResolveCommand() *cobra.Command {
	var (
		entityType   string
		jurisdiction string
		amount       float64
		instrument   string
		owners       []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the full document checklist for an application",
		Long: `Resolve combines entity formation documents, tax filings and the identity
documents of every beneficial owner.

Example:
  docreq resolve --entity-type llc --jurisdiction DE --amount 250000 \
    --instrument sba_loan --owner us_citizen --owner temporary_visa_holder`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := requirements.ParseTransactionProfile(amount, instrument, entityType)
			if err != nil {
				return err
			}
			resolver, err := a.resolver()
			if err != nil {
				return err
			}

			statuses := make([]requirements.CitizenshipStatus, 0, len(owners))
			for _, o := range owners {
				statuses = append(statuses, requirements.ParseCitizenshipStatus(o))
			}

			result, err := resolver.Resolve(requirements.ApplicationInput{
				EntityType:   tp.EntityType,
				Jurisdiction: jurisdiction,
				Amount:       tp.Amount,
				Instrument:   tp.Instrument,
				Owners:       statuses,
			})
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&entityType, "entity-type", "", "legal form of the business (llc, c_corp, ...)")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "state of formation, name or two-letter code")
	cmd.Flags().Float64Var(&amount, "amount", 0, "requested loan amount in USD")
	cmd.Flags().StringVar(&instrument, "instrument", "", "financial instrument (default: other)")
	cmd.Flags().StringArrayVar(&owners, "owner", nil, "citizenship status of a beneficial owner (repeatable)")
	_ = cmd.MarkFlagRequired("entity-type")

	return cmd
}

func (a *app) newTaxCommand() *cobra.Command {
	var (
		entityType string
		amount     float64
		instrument string
	)

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Show the tax filings required for a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := requirements.ParseTransactionProfile(amount, instrument, entityType)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), requirements.ResolveTaxRequirements(tp))
		},
	}

	cmd.Flags().StringVar(&entityType, "entity-type", "", "legal form of the business")
	cmd.Flags().Float64Var(&amount, "amount", 0, "requested loan amount in USD")
	cmd.Flags().StringVar(&instrument, "instrument", "", "financial instrument (default: other)")
	_ = cmd.MarkFlagRequired("entity-type")

	return cmd
}

func (a *app) newIdentityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "identity <status>",
		Short: "List identity documents for a citizenship status",
		Long: `Identity lists the primary and secondary identity documents accepted for a
beneficial owner. Unknown statuses produce an empty list.

Statuses: us_citizen, permanent_resident, temporary_visa_holder, refugee_asylee,
dual_citizen_us_foreign, other_non_resident_alien`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := a.resolver()
			if err != nil {
				return err
			}
			docs := resolver.ResolveIdentityDocuments(requirements.ParseCitizenshipStatus(args[0]))
			return a.render(cmd.OutOrStdout(), map[string]interface{}{
				"citizenshipStatus": args[0],
				"documents":         docs,
			})
		},
	}
}
