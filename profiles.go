package main

import (
	tls "github.com/refraction-networking/utls"
)

// BrowserProfile pairs a TLS ClientHello fingerprint with the request
// headers sent alongside it.
type BrowserProfile struct {
	Name     string
	TLSHello tls.ClientHelloID
	Headers  [][2]string
}

// textAccept is sent by every profile; both services answer with text.
const textAccept = "text/plain,text/html;q=0.9,text/markdown;q=0.9,*/*;q=0.8"

func getProfile(name string) BrowserProfile {
	switch name {
	case "firefox":
		return firefoxProfile()
	case "chrome":
		return chromeProfile()
	default:
		return nativeProfile()
	}
}

func nativeProfile() BrowserProfile {
	return BrowserProfile{
		Name:     "native",
		TLSHello: tls.HelloGolang,
		Headers: [][2]string{
			{"User-Agent", "loremtext/" + version},
			{"Accept", textAccept},
			{"Accept-Encoding", "gzip, br, zstd"},
		},
	}
}

func chromeProfile() BrowserProfile {
	return BrowserProfile{
		Name:     "chrome",
		TLSHello: tls.HelloChrome_Auto,
		Headers: [][2]string{
			{"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"},
			{"Accept", textAccept},
			{"Accept-Language", "en-US,en;q=0.9"},
			{"Accept-Encoding", "gzip, br, zstd"},
			{"Sec-Ch-Ua", `"Chromium";v="133", "Not(A:Brand";v="99", "Google Chrome";v="133"`},
			{"Sec-Ch-Ua-Mobile", "?0"},
			{"Sec-Ch-Ua-Platform", `"Windows"`},
		},
	}
}

func firefoxProfile() BrowserProfile {
	return BrowserProfile{
		Name:     "firefox",
		TLSHello: tls.HelloFirefox_Auto,
		Headers: [][2]string{
			{"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:134.0) Gecko/20100101 Firefox/134.0"},
			{"Accept", textAccept},
			{"Accept-Language", "en-US,en;q=0.5"},
			{"Accept-Encoding", "gzip, br, zstd"},
		},
	}
}
