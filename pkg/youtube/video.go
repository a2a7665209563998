package youtube

import (
	"regexp"
	"strconv"
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"
)

type VideoInfo struct {
	VideoID string `json:"videoId"`
}

// ConvertTimeToSeconds accepts "h:m:s", "m:s" or a bare number of seconds.
// Unparseable parts count as zero.
func ConvertTimeToSeconds(s string) int {
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		nums[i] = number(p)
	}

	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		return nums[0]*60 + nums[1]
	}

	return number(s)
}

func number(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

var nonIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ExtractVideoInfo pulls the video id out of watch, embed, /v/ and youtu.be
// links. Any other input is taken as a literal id with foreign characters removed.
func ExtractVideoInfo(input string) VideoInfo {
	if input == "" {
		return VideoInfo{}
	}

	if id := idFromURL(input); id != "" {
		return VideoInfo{VideoID: id}
	}

	return VideoInfo{VideoID: nonIDChars.ReplaceAllString(strings.TrimSpace(input), "")}
}

func idFromURL(input string) string {
	u, err := whatwg.Parse(strings.TrimSpace(input))
	if err != nil {
		return ""
	}

	host := u.Hostname()
	path := u.Pathname()

	switch {
	case strings.Contains(host, "youtube.com"):
		switch {
		case path == "/watch":
			return u.SearchParams().Get("v")
		case strings.HasPrefix(path, "/embed/"), strings.HasPrefix(path, "/v/"):
			return strings.Split(path, "/")[2]
		}
	case host == "youtu.be":
		return strings.TrimPrefix(path, "/")
	}

	return ""
}
