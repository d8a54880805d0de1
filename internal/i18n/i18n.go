// Package i18n holds the control surface string tables.
package i18n

import "strings"

// Lang is a supported locale code.
type Lang string

const (
	Chinese  Lang = "zh"
	English  Lang = "en"
	Japanese Lang = "ja"
	French   Lang = "fr"
	German   Lang = "de"
	Spanish  Lang = "es"
)

// Default is used whenever an unknown code is requested.
const Default = Chinese

// Key identifies a translatable string.
type Key string

const (
	EyeCareMode  Key = "eyeCareMode"
	Opacity      Key = "opacity"
	Animation    Key = "animation"
	AutoStart    Key = "autoStart"
	Language     Key = "language"
	FooterInfo   Key = "footerInfo"
	Detecting    Key = "detecting"
	Detected     Key = "detected"
	Monitors     Key = "monitors"
	NoMonitors   Key = "noMonitors"
	DetectFailed Key = "detectFailed"
	InitFailed   Key = "initFailed"
	AnimNone     Key = "animNone"
	AnimFast     Key = "animFast"
	AnimMedium   Key = "animMedium"
	AnimSlow     Key = "animSlow"
)

// Langs lists the supported locales in display order.
var Langs = []Lang{Chinese, English, Japanese, French, German, Spanish}

// nativeNames are shown in the language picker regardless of the active locale.
var nativeNames = map[Lang]string{
	Chinese:  "中文",
	English:  "English",
	Japanese: "日本語",
	French:   "Français",
	German:   "Deutsch",
	Spanish:  "Español",
}

var translations = map[Lang]map[Key]string{
	Chinese: {
		EyeCareMode:  "护眼模式",
		Opacity:      "遮罩透明度",
		Animation:    "切换动画",
		AutoStart:    "开机自启动",
		Language:     "语言",
		FooterInfo:   "当鼠标移至某一显示器时，其他显示器将自动显示遮罩",
		Detecting:    "检测中...",
		Detected:     "已检测到",
		Monitors:     "台显示器",
		NoMonitors:   "未检测到显示器",
		DetectFailed: "检测失败",
		InitFailed:   "初始化失败",
		AnimNone:     "无",
		AnimFast:     "快",
		AnimMedium:   "中",
		AnimSlow:     "慢",
	},
	English: {
		EyeCareMode:  "Eye Care Mode",
		Opacity:      "Mask Opacity",
		Animation:    "Animation Speed",
		AutoStart:    "Auto Start",
		Language:     "Language",
		FooterInfo:   "When mouse moves to a monitor, other monitors will show overlay",
		Detecting:    "Detecting...",
		Detected:     "Detected",
		Monitors:     "monitors",
		NoMonitors:   "No monitors detected",
		DetectFailed: "Detection failed",
		InitFailed:   "Initialization failed",
		AnimNone:     "None",
		AnimFast:     "Fast",
		AnimMedium:   "Medium",
		AnimSlow:     "Slow",
	},
	Japanese: {
		EyeCareMode:  "アイケアモード",
		Opacity:      "マスク透明度",
		Animation:    "アニメーション速度",
		AutoStart:    "自動起動",
		Language:     "言語",
		FooterInfo:   "マウスがモニターに移動すると、他のモニターにマスクが表示されます",
		Detecting:    "検出中...",
		Detected:     "検出しました",
		Monitors:     "台のモニター",
		NoMonitors:   "モニターが検出されません",
		DetectFailed: "検出失敗",
		InitFailed:   "初期化に失敗しました",
		AnimNone:     "なし",
		AnimFast:     "速い",
		AnimMedium:   "中",
		AnimSlow:     "遅い",
	},
	French: {
		EyeCareMode:  "Mode Protection des Yeux",
		Opacity:      "Opacité du Masque",
		Animation:    "Vitesse d'Animation",
		AutoStart:    "Démarrage Auto",
		Language:     "Langue",
		FooterInfo:   "Lorsque la souris se déplace vers un moniteur, les autres moniteurs affichent un masque",
		Detecting:    "Détection...",
		Detected:     "Détecté",
		Monitors:     "moniteurs",
		NoMonitors:   "Aucun moniteur détecté",
		DetectFailed: "Échec de la détection",
		InitFailed:   "Échec de l'initialisation",
		AnimNone:     "Aucune",
		AnimFast:     "Rapide",
		AnimMedium:   "Moyen",
		AnimSlow:     "Lent",
	},
	German: {
		EyeCareMode:  "Augenschutzmodus",
		Opacity:      "Maskendeckkraft",
		Animation:    "Animationsgeschwindigkeit",
		AutoStart:    "Autostart",
		Language:     "Sprache",
		FooterInfo:   "Wenn die Maus zu einem Monitor bewegt wird, zeigen andere Monitore eine Maske an",
		Detecting:    "Erkennung...",
		Detected:     "Erkannt",
		Monitors:     "Monitore",
		NoMonitors:   "Keine Monitore erkannt",
		DetectFailed: "Erkennung fehlgeschlagen",
		InitFailed:   "Initialisierung fehlgeschlagen",
		AnimNone:     "Keine",
		AnimFast:     "Schnell",
		AnimMedium:   "Mittel",
		AnimSlow:     "Langsam",
	},
	Spanish: {
		EyeCareMode:  "Modo Cuidado de Ojos",
		Opacity:      "Opacidad de Máscara",
		Animation:    "Velocidad de Animación",
		AutoStart:    "Inicio Automático",
		Language:     "Idioma",
		FooterInfo:   "Cuando el mouse se mueve a un monitor, otros monitores mostrarán una máscara",
		Detecting:    "Detectando...",
		Detected:     "Detectado",
		Monitors:     "monitores",
		NoMonitors:   "No se detectaron monitores",
		DetectFailed: "Detección fallida",
		InitFailed:   "Error de inicialización",
		AnimNone:     "Ninguna",
		AnimFast:     "Rápida",
		AnimMedium:   "Media",
		AnimSlow:     "Lenta",
	},
}

// Parse returns the locale for code, falling back to Default for unknown
// or empty codes.
func Parse(code string) Lang {
	lang := Lang(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := translations[lang]; ok {
		return lang
	}
	return Default
}

// Supported reports whether code names a known locale exactly.
func Supported(code string) bool {
	_, ok := translations[Lang(code)]
	return ok
}

// T returns the string for key in lang. Unknown locales use Default; a key
// missing from the table is returned verbatim.
func T(lang Lang, key Key) string {
	table, ok := translations[lang]
	if !ok {
		table = translations[Default]
	}
	if s, ok := table[key]; ok {
		return s
	}
	return string(key)
}

// NativeName returns the language's own name for itself.
func NativeName(lang Lang) string {
	if name, ok := nativeNames[lang]; ok {
		return name
	}
	return string(lang)
}

// AnimationLabel returns the localized label for an animation duration in
// milliseconds. Unknown durations are labelled medium.
func AnimationLabel(lang Lang, durationMS int) string {
	switch durationMS {
	case 0:
		return T(lang, AnimNone)
	case 200:
		return T(lang, AnimFast)
	case 500:
		return T(lang, AnimSlow)
	default:
		return T(lang, AnimMedium)
	}
}
