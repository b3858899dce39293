package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one telemetry window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	FryCount      int `csv:"fry"`
	TrueFryCount  int `csv:"truefry"`
	KrillCount    int `csv:"krill"`
	TunaCount     int `csv:"tuna"`
	SquidCount    int `csv:"squid"`
	EggCount      int `csv:"eggs"`
	FertEggCount  int `csv:"fert_eggs"`
	DetritusCount int `csv:"detritus"`

	// Events during window
	Spawns          int `csv:"spawns"`
	Deaths          int `csv:"deaths"`
	TunaKills       int `csv:"tuna_kills"`
	SquidKills      int `csv:"squid_kills"`
	Grazes          int `csv:"grazes"`
	Transformations int `csv:"transformations"`
	EggsLaid        int `csv:"eggs_laid"`
	Fertilizations  int `csv:"fertilizations"`
	Hatches         int `csv:"hatches"`
	Jets            int `csv:"jets"`

	// Energy distribution (sampled at window end)
	FishEnergyMean float64 `csv:"fish_energy_mean"`
	FishEnergyP10  float64 `csv:"fish_energy_p10"`
	FishEnergyP50  float64 `csv:"fish_energy_p50"`
	FishEnergyP90  float64 `csv:"fish_energy_p90"`

	KrillEnergyMean float64 `csv:"krill_energy_mean"`
	KrillEnergyStd  float64 `csv:"krill_energy_std"`
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// ComputeMeanStd calculates mean and standard deviation.
func ComputeMeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return mean, std
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("fry", s.FryCount),
		slog.Int("truefry", s.TrueFryCount),
		slog.Int("krill", s.KrillCount),
		slog.Int("tuna", s.TunaCount),
		slog.Int("squid", s.SquidCount),
		slog.Int("eggs", s.EggCount),
		slog.Int("fert_eggs", s.FertEggCount),
		slog.Int("detritus", s.DetritusCount),
		slog.Int("spawns", s.Spawns),
		slog.Int("deaths", s.Deaths),
		slog.Int("tuna_kills", s.TunaKills),
		slog.Int("squid_kills", s.SquidKills),
		slog.Int("grazes", s.Grazes),
		slog.Int("transformations", s.Transformations),
		slog.Int("eggs_laid", s.EggsLaid),
		slog.Int("fertilizations", s.Fertilizations),
		slog.Int("hatches", s.Hatches),
		slog.Int("jets", s.Jets),
		slog.Float64("fish_energy_mean", s.FishEnergyMean),
		slog.Float64("fish_energy_p10", s.FishEnergyP10),
		slog.Float64("fish_energy_p50", s.FishEnergyP50),
		slog.Float64("fish_energy_p90", s.FishEnergyP90),
		slog.Float64("krill_energy_mean", s.KrillEnergyMean),
		slog.Float64("krill_energy_std", s.KrillEnergyStd),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"fry", s.FryCount,
		"truefry", s.TrueFryCount,
		"krill", s.KrillCount,
		"tuna", s.TunaCount,
		"squid", s.SquidCount,
		"eggs", s.EggCount,
		"fert_eggs", s.FertEggCount,
		"detritus", s.DetritusCount,
		"spawns", s.Spawns,
		"deaths", s.Deaths,
		"tuna_kills", s.TunaKills,
		"squid_kills", s.SquidKills,
		"grazes", s.Grazes,
		"transformations", s.Transformations,
		"eggs_laid", s.EggsLaid,
		"fertilizations", s.Fertilizations,
		"hatches", s.Hatches,
		"jets", s.Jets,
		"fish_energy_mean", s.FishEnergyMean,
		"fish_energy_p10", s.FishEnergyP10,
		"fish_energy_p50", s.FishEnergyP50,
		"fish_energy_p90", s.FishEnergyP90,
		"krill_energy_mean", s.KrillEnergyMean,
		"krill_energy_std", s.KrillEnergyStd,
	)
}
