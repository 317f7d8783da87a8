package presets

import "github.com/meshmessaging/usenix23/config"

func init() {
	register("small", small())
}

func small() config.Config {
	return experiment(50, 10, 25, 5)
}
