// Package main contains a command to solve a platform pose and
// optionally drive the servos to it.
package main

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/alvidrezluke/lynceus-platform/config"
	"github.com/alvidrezluke/lynceus-platform/controller"
	"github.com/alvidrezluke/lynceus-platform/maestro"
	"github.com/alvidrezluke/lynceus-platform/spatialmath"
)

var logger = golog.NewDevelopmentLogger("platform")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string  `flag:"config,required,usage=platform geometry config file"`
	X          float64 `flag:"x,usage=target x in world frame units"`
	Y          float64 `flag:"y,usage=target y in world frame units"`
	Z          float64 `flag:"z,usage=target z in world frame units"`
	Roll       float64 `flag:"roll,usage=roll in radians"`
	Pitch      float64 `flag:"pitch,usage=pitch in radians"`
	Yaw        float64 `flag:"yaw,usage=yaw in radians"`
	DryRun     bool    `flag:"dry,usage=solve only; do not touch hardware"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) (err error) {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg, err := config.FromFile(argsParsed.ConfigFile)
	if err != nil {
		return err
	}
	kin, err := cfg.Engine(logger)
	if err != nil {
		return err
	}

	target := r3.Vector{X: argsParsed.X, Y: argsParsed.Y, Z: argsParsed.Z}
	orientation := &spatialmath.EulerAngles{
		Roll:  argsParsed.Roll,
		Pitch: argsParsed.Pitch,
		Yaw:   argsParsed.Yaw,
	}

	if argsParsed.DryRun {
		angles, err := kin.InverseKinematics(target, orientation)
		if err != nil {
			return err
		}
		logger.Infow("solved", "angles_rad", angles)
		return nil
	}

	if cfg.SerialPath == "" {
		return errors.New("config has no serial_path; use -dry to solve without hardware")
	}
	dev, err := maestro.New(cfg.SerialPath)
	if err != nil {
		return err
	}
	ctrl := controller.New(kin, dev, cfg.ServoRange(), logger)
	defer func() {
		err = multierr.Combine(err, ctrl.Close())
	}()

	angles, err := ctrl.MoveTo(ctx, target, orientation)
	if err != nil {
		return err
	}
	logger.Infow("moving", "angles_rad", angles)
	if err := ctrl.WaitUntilStopped(ctx); err != nil {
		return err
	}
	positions, err := ctrl.Positions()
	if err != nil {
		return err
	}
	logger.Infow("settled", "feedback_qus", positions)
	return nil
}
