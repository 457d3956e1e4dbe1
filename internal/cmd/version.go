package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Alia5/studiogen/internal/codegen/common"
)

type Version struct{}

// Run is called by Kong when the version command is executed.
func (v *Version) Run() error {
	return v.run(os.Stdout)
}

func (v *Version) run(w io.Writer) error {
	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "studiogen %s\n", version)
	return err
}
