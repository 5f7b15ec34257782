package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"edge-lab-bot/internal/container"
	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/infrastructure/storage"
	"edge-lab-bot/internal/infrastructure/vision"
)

type detectOptions struct {
	operator   string
	set        map[string]string
	out        string
	resultOnly bool
}

func newDetectCmd(c *cli) *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Apply an operator to an image file and write a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDetect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.operator, "operator", "o", string(entity.OperatorCanny),
		"operator: canny, sobel, prewitt, harris, good_features")
	cmd.Flags().StringToStringVar(&opts.set, "set", nil, "control values, e.g. --set kernel_size=5")
	cmd.Flags().StringVar(&opts.out, "out", "", "output PNG path (default <image>_<operator>.png)")
	cmd.Flags().BoolVar(&opts.resultOnly, "result-only", false, "write only the processed image without the original")

	return cmd
}

func (c *cli) runDetect(cmd *cobra.Command, path string, opts *detectOptions) error {
	controls, err := parseControls(opts.set)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	appContainer := container.New(
		storage.NewMemoryUserRepository(),
		storage.NewMemoryImageRepository(),
		vision.NewGoCVDetector(),
		c.newCodec(),
		c.log,
	)

	img, err := appContainer.Codec.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	result, err := appContainer.DetectionService.Process(cmd.Context(), img, opts.operator, controls)
	if err != nil {
		return err
	}

	var encoded []byte
	if opts.resultOnly {
		encoded, err = appContainer.Codec.Encode(result.Output)
	} else {
		encoded, err = appContainer.Codec.EncodeComparison(img, result.Output)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	out := opts.out
	if out == "" {
		out = defaultOutputPath(path, result.Operator)
	}
	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Operator.Title(), out)
	if result.Operator == entity.OperatorGoodFeatures {
		fmt.Fprintf(cmd.OutOrStdout(), "corners: %d\n", len(result.Corners))
	}
	return nil
}

// parseControls переводит --set name=value в числовые значения.
func parseControls(raw map[string]string) (entity.Controls, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	controls := make(entity.Controls, len(raw))
	for _, name := range names {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw[name]), 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %q is not a number", name, raw[name])
		}
		controls[name] = v
	}
	return controls, nil
}

func defaultOutputPath(path string, op entity.Operator) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return fmt.Sprintf("%s_%s.png", base, op)
}
