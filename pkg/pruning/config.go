package pruning

import "github.com/spf13/viper"

// SettingsFromViper binds Settings from a *viper.Viper the way the
// planner's TableContext.settings is populated (spec 6): the
// "max_threads" and "max_concurrent_prune" keys. Neither key is required;
// unset keys take the zero value, and the executor applies its own
// mandatory floor to MaxConcurrentPrune regardless.
func SettingsFromViper(v *viper.Viper) Settings {
	return Settings{
		MaxThreads:         v.GetInt("max_threads"),
		MaxConcurrentPrune: v.GetInt("max_concurrent_prune"),
	}
}
