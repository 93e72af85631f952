// Package app wires the packages of this module into an fx application
// according to a config.Config.
//
// The CLI uses Core for one-shot commands and Server for the long running
// API:
//
//	cfg, err := config.Load("ragcore.yaml")
//	if err != nil {
//	    return err
//	}
//	fx.New(app.Server(cfg)).Run()
package app
