package cmd

import (
	"github.com/spf13/cobra"
	"github.com/survey-automation/routebatch/internal/processcmd"
)

func newProcessCmd() *cobra.Command {
	return processcmd.NewProcessCmd()
}

func newPublishCmd() *cobra.Command {
	return processcmd.NewPublishCmd()
}

func newReportCmd() *cobra.Command {
	return processcmd.NewReportCmd()
}
