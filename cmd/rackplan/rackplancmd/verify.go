package rackplancmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/planfmt"
)

type cmdVerify struct {
	Plan string `long:"plan" required:"true" description:"Path of a written plan to verify"`
}

func init() {
	CommandRegistry.AddCommand("", "verify", "Verify a written plan", `
Verify decodes a plan written by "assign --write" and checks that:
- Every shard of every replica is assigned to a known host.
- Each host's load matches its assigned shards, and loads sum to
  shards * replicas.
- Reported ownership percentages are consistent with loads.
- No rack hosts more than one replica.

The plan encoding and compression are inferred from extensions of --plan:
>    verify --plan plans/current.yaml.gz
`, &cmdVerify{})
}

func (cmd *cmdVerify) Execute([]string) error {
	startup()

	var plan, err = readPlan(FS, cmd.Plan)
	if err != nil {
		return err
	}
	return verifyPlan(os.Stdout, plan)
}

func readPlan(fs afero.Fs, path string) (*placement.Plan, error) {
	var f, err = fs.Open(path)
	if err != nil {
		return nil, errors.WithMessage(err, "opening plan")
	}
	defer f.Close()

	plan, err := planfmt.DecodePath(f, path)
	if err != nil {
		return nil, errors.WithMessagef(err, "decoding plan %s", path)
	}
	return plan, nil
}

func verifyPlan(w io.Writer, plan *placement.Plan) error {
	if err := plan.Validate(); err != nil {
		return errors.WithMessagef(err, "plan %s is invalid", plan.ID)
	}
	fmt.Fprintf(w, "Plan %s is valid: %s shard slots over %d hosts.\n",
		plan.ID, humanize.Comma(int64(plan.Shards)*int64(plan.Replicas)), len(plan.Hosts))
	return nil
}
