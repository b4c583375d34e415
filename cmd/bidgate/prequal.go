package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/domain/prequal"
)

func prequalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prequal",
		Short: "Pre-qualification tools",
	}

	var criteriaPath string
	score := &cobra.Command{
		Use:   "score <answers.yaml>",
		Short: "Score a set of answers against a criteria catalog",
		Long: `Reads a YAML (or JSON) mapping of criterion id to option value and
prints the resulting score, recommendation and gate verdict. Use "-" to read
the answers from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := prequal.DefaultCriteria()
			if criteriaPath != "" {
				var err error
				if criteria, err = prequal.LoadCatalogFile(criteriaPath); err != nil {
					return err
				}
			}
			answers, err := readAnswers(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			res, err := scoreAnswers(criteria, answers)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Result  prequal.Result `json:"result"`
				Verdict gate.Verdict   `json:"verdict"`
			}{res, res.Verdict()})
		},
	}
	score.Flags().StringVar(&criteriaPath, "criteria", "", "Criteria catalog (YAML); defaults to the built-in catalog")
	cmd.AddCommand(score)
	return cmd
}

func readAnswers(stdin io.Reader, path string) (map[string]string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	answers := map[string]string{}
	// YAML is a superset of JSON.
	if err := yaml.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}

func scoreAnswers(criteria []prequal.Criterion, answers map[string]string) (prequal.Result, error) {
	known := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		known[c.ID] = true
	}
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	responses := make(map[string]prequal.Response, len(answers))
	for _, id := range ids {
		if !known[id] {
			return prequal.Result{}, fmt.Errorf("unknown criterion %q", id)
		}
		responses[id] = prequal.Response{CriterionID: id, Value: answers[id]}
	}
	return prequal.Score(criteria, responses)
}
