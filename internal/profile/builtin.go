package profile

const (
	Chrome  = "chrome"
	Edge    = "edge"
	Firefox = "firefox"
	IE      = "ie"
)

var commonUploadTypes = map[string]string{
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "text/javascript",
	"mjs":  "text/javascript",
	"xml":  "text/xml",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"json": "application/json",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
	"gif":  "image/gif",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
}

func uploadTypes(extra map[string]string) map[string]string {
	out := make(map[string]string, len(commonUploadTypes)+len(extra))
	for k, v := range commonUploadTypes {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var chromiumOrder = []string{
	"Host",
	"Connection",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"Upgrade-Insecure-Requests",
	"User-Agent",
	"Accept",
	"Sec-Fetch-Site",
	"Sec-Fetch-Mode",
	"Sec-Fetch-User",
	"Sec-Fetch-Dest",
	"Referer",
	"Accept-Encoding",
	"Accept-Language",
	"Cookie",
}

var chromiumAccept = AcceptHeaders{
	Document:   "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	Image:      "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
	Stylesheet: "text/css,*/*;q=0.1",
	Script:     "*/*",
	Other:      "*/*",
}

var builtin = map[string]*Profile{
	Chrome: {
		Name:                    Chrome,
		UserAgent:               "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
		HeaderOrder:             chromiumOrder,
		Accept:                  chromiumAccept,
		AcceptLanguage:          "en-US,en;q=0.9",
		AcceptEncoding:          "gzip, deflate, br, zstd",
		UploadTypes:             uploadTypes(map[string]string{"flac": "audio/flac", "mid": "audio/mid"}),
		FullQueryEncoding:       true,
		CarryFragmentOnRedirect: true,
	},
	Edge: {
		Name:                    Edge,
		UserAgent:               "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36 Edg/129.0.0.0",
		HeaderOrder:             chromiumOrder,
		Accept:                  chromiumAccept,
		AcceptLanguage:          "en-US,en;q=0.9",
		AcceptEncoding:          "gzip, deflate, br, zstd",
		UploadTypes:             uploadTypes(map[string]string{"mid": "audio/mid"}),
		FullQueryEncoding:       true,
		CarryFragmentOnRedirect: true,
	},
	Firefox: {
		Name:      Firefox,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0",
		HeaderOrder: []string{
			"Host",
			"User-Agent",
			"Accept",
			"Accept-Language",
			"Accept-Encoding",
			"Referer",
			"Connection",
			"Cookie",
			"Upgrade-Insecure-Requests",
			"Sec-Fetch-Dest",
			"Sec-Fetch-Mode",
			"Sec-Fetch-Site",
			"Sec-Fetch-User",
			"Priority",
		},
		Accept: AcceptHeaders{
			Document:   "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/png,image/svg+xml,*/*;q=0.8",
			Image:      "image/avif,image/webp,image/png,image/svg+xml,image/*;q=0.8,*/*;q=0.5",
			Stylesheet: "text/css,*/*;q=0.1",
			Script:     "*/*",
			Other:      "*/*",
		},
		AcceptLanguage:          "en-US,en;q=0.5",
		AcceptEncoding:          "gzip, deflate, br, zstd",
		UploadTypes:             uploadTypes(map[string]string{"flac": "audio/x-flac", "mid": "audio/midi"}),
		FullQueryEncoding:       true,
		CarryFragmentOnRedirect: true,
	},
	IE: {
		Name:      IE,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; Trident/7.0; rv:11.0) like Gecko",
		HeaderOrder: []string{
			"Accept",
			"Referer",
			"Accept-Language",
			"User-Agent",
			"Accept-Encoding",
			"Host",
			"DNT",
			"Connection",
			"Cookie",
		},
		Accept: AcceptHeaders{
			Document:   "text/html, application/xhtml+xml, image/jxr, */*",
			Image:      "image/png, image/svg+xml, image/jxr, image/*;q=0.8, */*;q=0.5",
			Stylesheet: "text/css, */*",
			Script:     "application/javascript, */*;q=0.8",
			Other:      "*/*",
		},
		AcceptLanguage:          "en-US,en;q=0.5",
		AcceptEncoding:          "gzip, deflate",
		UploadTypes:             uploadTypes(map[string]string{"mp3": "audio/mp3", "mid": "audio/mid"}),
		FullQueryEncoding:       false,
		CarryFragmentOnRedirect: false,
	},
}
