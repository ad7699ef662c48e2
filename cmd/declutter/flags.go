package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

var answerFlags = []struct {
	dimension model.Dimension
	usage     string
}{
	{model.DimensionUsage, "how often it is used (daily, weekly, monthly, rarely, no)"},
	{model.DimensionSentimental, "sentimental value (high, some, none)"},
	{model.DimensionCondition, "condition (excellent, good, fair, poor)"},
	{model.DimensionValue, "resale value (high, medium, low)"},
	{model.DimensionReplaceability, "how hard it is to replace (difficult, moderate, easy)"},
	{model.DimensionSpace, "whether there is room for it (yes, limited, no)"},
}

func addAnswerFlags(cmd *cobra.Command) {
	for _, f := range answerFlags {
		cmd.Flags().String(string(f.dimension), "", f.usage)
	}
}

// answersFromFlags returns nil when no answer flag was given.
func answersFromFlags(cmd *cobra.Command) *model.Answers {
	values := make(map[model.Dimension]string, len(answerFlags))
	changed := false
	for _, f := range answerFlags {
		name := string(f.dimension)
		if cmd.Flags().Changed(name) {
			changed = true
		}
		values[f.dimension], _ = cmd.Flags().GetString(name)
	}
	if !changed {
		return nil
	}
	return &model.Answers{
		Usage:          values[model.DimensionUsage],
		Sentimental:    values[model.DimensionSentimental],
		Condition:      values[model.DimensionCondition],
		Value:          values[model.DimensionValue],
		Replaceability: values[model.DimensionReplaceability],
		Space:          values[model.DimensionSpace],
	}
}

func currentUserID() (int64, error) {
	id := viper.GetInt64("user.id")
	if id <= 0 {
		return 0, errors.New("no user selected: pass --user or set DECLUTTER_USER_ID")
	}
	return id, nil
}

func outcomeFlag(cmd *cobra.Command, name string) (model.Outcome, error) {
	value, _ := cmd.Flags().GetString(name)
	o, err := model.ParseOutcome(value)
	if err != nil {
		return "", fmt.Errorf("--%s: %w", name, err)
	}
	return o, nil
}
