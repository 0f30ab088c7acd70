package weather

// FallbackIcon is shown for any condition code IconFor does not know.
const FallbackIcon = "cloud.sun.fill"

// IconFor maps an OpenWeatherMap icon code (e.g. "10n") to a display icon.
func IconFor(code string) string {
	switch code {
	case "01d":
		return "sun.max.fill"
	case "01n":
		return "moon.fill"
	case "02d":
		return "cloud.sun.fill"
	case "02n":
		return "cloud.moon.fill"
	case "03d", "03n":
		return "cloud.fill"
	case "04d", "04n":
		return "smoke.fill"
	case "09d", "09n":
		return "cloud.drizzle.fill"
	case "10d":
		return "cloud.sun.rain.fill"
	case "10n":
		return "cloud.moon.rain.fill"
	case "11d", "11n":
		return "cloud.bolt.fill"
	case "13d", "13n":
		return "snow"
	case "50d", "50n":
		return "cloud.fog.fill"
	default:
		return FallbackIcon
	}
}
