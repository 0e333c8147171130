package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"github.com/rockdoc/cdlgen/log"
	"github.com/rockdoc/cdlgen/pkg"
)

type pprofConfig struct {
	Mode string `default:"" enum:",cpu,mem,block,mutex,trace" help:"Enable profiling" placeholder:"MODE"`
	Dir  string `help:"Profile output directory" type:"path"`
}

func (pprofConfig) group() kong.Group {
	var group kong.Group

	group.Key = "pprof"
	group.Title = "Profiling (pprof)"

	return group
}

// start begins profiling if a mode was selected; the returned function
// stops it.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	dir := f.Dir
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			cache = os.TempDir()
		}

		dir = filepath.Join(cache, pkg.Name, "pprof")
	}

	log.DebugContext(ctx, "pprof start",
		slog.String("mode", f.Mode),
		slog.String("dir", dir),
	)

	opts := []func(*profile.Profile){
		profile.ProfilePath(dir),
		profile.Quiet,
		profile.NoShutdownHook,
	}

	switch f.Mode {
	case "mem":
		opts = append(opts, profile.MemProfile)
	case "block":
		opts = append(opts, profile.BlockProfile)
	case "mutex":
		opts = append(opts, profile.MutexProfile)
	case "trace":
		opts = append(opts, profile.TraceProfile)
	default:
		opts = append(opts, profile.CPUProfile)
	}

	profiler := profile.Start(opts...)

	return func() {
		log.DebugContext(ctx, "pprof stop", slog.String("mode", f.Mode))
		profiler.Stop()
	}
}
