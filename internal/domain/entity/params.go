package entity

// Имена управляющих параметров, приходящих из интерфейса.
const (
	ControlLowThreshold  = "low_threshold"
	ControlHighThreshold = "high_threshold"
	ControlKernelSize    = "kernel_size"
	ControlQuality       = "quality"
	ControlMaxCorners    = "max_corners"
	ControlMinDistance   = "min_distance"
)

// Controls сырые значения ползунков/аргументов по имени параметра.
type Controls map[string]float64

// Clone возвращает независимую копию.
func (c Controls) Clone() Controls {
	out := make(Controls, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ParameterSet проверенный набор параметров конкретного оператора.
type ParameterSet interface {
	Operator() Operator
}

// CannyParams пороги гистерезиса.
type CannyParams struct {
	Low  int
	High int
}

func (CannyParams) Operator() Operator { return OperatorCanny }

// SobelParams размер апертуры производной.
type SobelParams struct {
	KernelSize int
}

func (SobelParams) Operator() Operator { return OperatorSobel }

// PrewittParams принимает размер ядра, но фильтр всегда 3×3.
// KernelSize сохранён для совместимости с интерфейсом и не влияет на результат.
type PrewittParams struct {
	KernelSize int
}

func (PrewittParams) Operator() Operator { return OperatorPrewitt }

// HarrisParams коэффициент чувствительности k детектора Харриса.
type HarrisParams struct {
	Quality float64
}

func (HarrisParams) Operator() Operator { return OperatorHarris }

// GoodFeaturesParams параметры goodFeaturesToTrack.
type GoodFeaturesParams struct {
	MaxCorners  int
	Quality     float64
	MinDistance float64
}

func (GoodFeaturesParams) Operator() Operator { return OperatorGoodFeatures }

// Значения по умолчанию, когда пользователь ничего не менял.
var (
	DefaultCannyParams        = CannyParams{Low: 100, High: 200}
	DefaultSobelParams        = SobelParams{KernelSize: 3}
	DefaultPrewittParams      = PrewittParams{KernelSize: 3}
	DefaultHarrisParams       = HarrisParams{Quality: 0.04}
	DefaultGoodFeaturesParams = GoodFeaturesParams{MaxCorners: 100, Quality: 0.01, MinDistance: 10}
)
