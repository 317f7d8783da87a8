package presets

import "github.com/meshmessaging/usenix23/config"

func init() {
	register("sparse", sparse())
}

func sparse() config.Config {
	return experiment(250, 10, 20, 1)
}
