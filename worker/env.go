package worker

import (
	"os"
	"strconv"

	"github.com/aura-studio/coldstart/bootstrap"
	"github.com/aura-studio/coldstart/loop"
	"github.com/aura-studio/coldstart/signer"
)

// Environment values recognized by FromEnv. Credentials and locations are
// read once at process start; nothing re-reads them later.
const (
	EnvSource   = "CONFIG_SOURCE"
	EnvLoader   = "CONFIG_LOADER"
	EnvInstall  = "CONFIG_INSTALL"
	EnvRegion   = "CONFIG_REGION"
	EnvAccess   = "CONFIG_ACCESS"
	EnvSecret   = "CONFIG_SECRET"
	EnvToken    = "CONFIG_TOKEN"
	EnvLoopMax  = "CONFIG_LOOP_MAX"
	EnvDebug    = "CONFIG_DEBUG"
)

// FromEnv maps the ambient process environment into explicit options, so
// components themselves never reach for globals.
func FromEnv() Option {
	return OptionFunc(func(o *Options) {
		var bopts []bootstrap.Option
		if v := os.Getenv(EnvSource); v != "" {
			bopts = append(bopts, bootstrap.WithDownloadSource(v))
		}
		if v := os.Getenv(EnvLoader); v != "" {
			bopts = append(bopts, bootstrap.WithLoaderPath(v))
		}
		if v := os.Getenv(EnvInstall); v != "" {
			bopts = append(bopts, bootstrap.WithInstallPath(v))
		}
		if v := os.Getenv(EnvRegion); v != "" {
			bopts = append(bopts, bootstrap.WithRegion(v))
		}
		if access := os.Getenv(EnvAccess); access != "" {
			bopts = append(bopts, bootstrap.WithCredentials(signer.Credentials{
				AccessKeyID:     access,
				SecretAccessKey: os.Getenv(EnvSecret),
				SessionToken:    os.Getenv(EnvToken),
			}))
		}

		debug := os.Getenv(EnvDebug) == "true" || os.Getenv(EnvDebug) == "1"
		if debug {
			bopts = append(bopts, bootstrap.WithDebugMode(true))
			o.Loop = append(o.Loop, loop.WithDebugMode(true))
		}
		o.Bootstrap = append(o.Bootstrap, bopts...)

		if v := os.Getenv(EnvLoopMax); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				o.Loop = append(o.Loop, loop.WithMaxIterations(n))
			}
		}
	})
}
