package main

import (
	"fmt"

	"github.com/notargets/ChannelModel/channel"
	"github.com/notargets/ChannelModel/config"
	"github.com/notargets/ChannelModel/scaling"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile           string
	verbose           bool
	method            string
	scheme            string
	finiteElements    int
	collocationPoints int
	log               *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{log: logrus.New()}
	root := &cobra.Command{
		Use:   "mc1d",
		Short: "Build one dimensional membrane channel models",
		Long: `mc1d discretizes the length domain of a membrane feed channel and builds its
isothermal, material and momentum equations.

Configuration can be changed by using a TOML configuration file (and providing
the path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'MC1D_var' where 'var' is the
name of the option, e.g. MC1D_FINITE_ELEMENTS=40.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log.SetOutput(cmd.ErrOrStderr())
			if opts.verbose {
				opts.log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every construction step")

	for _, c := range []*cobra.Command{buildCmd(opts), gridCmd(opts)} {
		c.Flags().StringVar(&opts.method, "method", "", "transformation method: dae.finite_difference or dae.collocation")
		c.Flags().StringVar(&opts.scheme, "scheme", "", "transformation scheme, e.g. BACKWARD or LAGRANGE-RADAU")
		c.Flags().IntVar(&opts.finiteElements, "finite-elements", 20, "number of finite elements")
		c.Flags().IntVar(&opts.collocationPoints, "collocation-points", 5, "collocation points per finite element")
		root.AddCommand(c)
	}
	root.AddCommand(configCmd(opts))
	return root
}

// load reads the configuration and applies the flags set on cmd
func (o *options) load(cmd *cobra.Command) (*config.File, error) {
	f, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("method") {
		f.TransformationMethod = o.method
	}
	if flags.Changed("scheme") {
		f.TransformationScheme = o.scheme
	}
	if flags.Changed("finite-elements") {
		f.FiniteElements = o.finiteElements
	}
	if flags.Changed("collocation-points") {
		f.CollocationPoints = o.collocationPoints
	}
	return f, nil
}

// channel builds and initializes the channel described by the configuration
func (o *options) channel(cmd *cobra.Command) (*channel.MembraneChannel1D, error) {
	f, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	pkg, err := f.PropertyPackage()
	if err != nil {
		return nil, err
	}
	cfg, err := f.ChannelConfig(pkg)
	if err != nil {
		return nil, err
	}
	c, err := channel.NewMembraneChannel1D(f.Name, cfg, scaling.NewContext())
	if err != nil {
		return nil, err
	}
	c.Log = o.log
	if err = c.Build(); err != nil {
		return nil, err
	}
	if err = c.Initialize(f.InletState()); err != nil {
		return nil, err
	}
	return c, nil
}

func buildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the channel and report its variables, equations and degrees of freedom",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.channel(cmd)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func gridCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Print the discretized length domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.channel(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", c.Grid)
			fmt.Fprintf(out, "# first element %g, nfe %d\n", c.FirstElement, c.NFE.Int())
			for i, x := range c.LengthDomain {
				fmt.Fprintf(out, "%d\t%.15g\n", i, x)
			}
			return nil
		},
	}
}

func configCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(opts.cfgFile)
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), f)
		},
	}
}
