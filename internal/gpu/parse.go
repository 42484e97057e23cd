package gpu

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// QueryFields is the --query-gpu field list Parse expects, in column order.
const QueryFields = "name,utilization.gpu,memory.used,memory.total,temperature.gpu,index"

const fieldCount = 6

var (
	modelNumberRe = regexp.MustCompile(`(?i)\b(\d{3,4})(?:\s*(ti))?\b`)
	anyNumberRe   = regexp.MustCompile(`\b\d+\b`)
)

// Parse converts nvidia-smi CSV output (noheader,nounits) into samples
// sorted by device index. It never fails: lines with too few fields or a
// non-numeric value are skipped, as are repeated indices after the first.
//
// Example: "NVIDIA GeForce RTX 3080, 42, 4096, 10240, 61, 0"
func Parse(raw string) []DeviceSample {
	samples := make([]DeviceSample, 0)
	seen := make(map[int]bool)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s, ok := parseLine(line)
		if !ok || seen[s.Index] {
			continue
		}
		seen[s.Index] = true
		samples = append(samples, s)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Index < samples[j].Index
	})
	return samples
}

func parseLine(line string) (DeviceSample, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < fieldCount {
		return DeviceSample{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// Columns 1-5 are numeric; [N/A] and blanks fail here.
	var nums [fieldCount - 1]float64
	for i := range nums {
		v, ok := parseNumber(parts[i+1])
		if !ok {
			return DeviceSample{}, false
		}
		nums[i] = v
	}

	gpuPct, memUsed, memTotal, tempRaw, idx := nums[0], nums[1], nums[2], nums[3], nums[4]
	if idx < 0 || idx != math.Trunc(idx) || idx > math.MaxInt32 {
		return DeviceSample{}, false
	}
	index := int(idx)

	name := parts[0]
	if name == "" {
		name = "GPU " + strconv.Itoa(index)
	}

	memPct := 0.0
	if memTotal > 0 {
		memPct = math.Round(memUsed / memTotal * 100)
	}

	return DeviceSample{
		Index:          index,
		Name:           name,
		ShortLabel:     ShortLabel(parts[0], index),
		GPUPercent:     gpuPct,
		MemUsedMiB:     memUsed,
		MemTotalMiB:    memTotal,
		MemPercent:     memPct,
		TempRawCelsius: tempRaw,
		TempPercent:    math.Round(clamp(tempRaw, 0, 100)),
	}, true
}

// parseNumber rejects blank columns rather than reading them as zero, so
// a reading with a missing field drops its whole line.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ShortLabel derives a compact label from a marketing name: the model
// number ("3080", "1080 TI"), else any standalone number, else "GPU<index>".
func ShortLabel(name string, index int) string {
	if m := modelNumberRe.FindStringSubmatch(name); m != nil {
		if m[2] != "" {
			return m[1] + " TI"
		}
		return m[1]
	}
	if m := anyNumberRe.FindString(name); m != "" {
		return m
	}
	return "GPU" + strconv.Itoa(index)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Clamp01 maps a percentage to a [0,1] gauge fraction. NaN maps to 0.
func Clamp01(percent float64) float64 {
	if math.IsNaN(percent) {
		return 0
	}
	return clamp(percent/100, 0, 1)
}
