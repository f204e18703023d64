// Package attackconfig provides the shared configuration types
// for mutaprobe probing rounds.
//
// Rounds embed [Base] for transport-level settings and consume [Config]
// for the probing knobs (candidate count, similarity threshold, pool
// size and the off-site test URLs):
//
//	cfg := attackconfig.DefaultConfig()
//	cfg.Concurrency = 20
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package attackconfig
