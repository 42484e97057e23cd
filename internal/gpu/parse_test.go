package gpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleDevice(t *testing.T) {
	samples := Parse("NVIDIA GeForce RTX 3080, 42, 4096, 10240, 61, 0\n")

	require.Len(t, samples, 1)
	s := samples[0]
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, "NVIDIA GeForce RTX 3080", s.Name)
	assert.Equal(t, "3080", s.ShortLabel)
	assert.Equal(t, 42.0, s.GPUPercent)
	assert.Equal(t, 4096.0, s.MemUsedMiB)
	assert.Equal(t, 10240.0, s.MemTotalMiB)
	assert.Equal(t, 40.0, s.MemPercent)
	assert.Equal(t, 61.0, s.TempRawCelsius)
	assert.Equal(t, 61.0, s.TempPercent)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIndex []int
	}{
		{
			name:      "empty input",
			input:     "",
			wantIndex: []int{},
		},
		{
			name:      "whitespace only",
			input:     "  \n\t\n  ",
			wantIndex: []int{},
		},
		{
			name:      "sorted by index",
			input:     "B 4090, 1, 1, 2, 30, 2\nA 3080, 1, 1, 2, 30, 0\nC 1080, 1, 1, 2, 30, 1",
			wantIndex: []int{0, 1, 2},
		},
		{
			name:      "windows line endings",
			input:     "A 3080, 1, 1, 2, 30, 0\r\nB 3090, 1, 1, 2, 30, 1\r\n",
			wantIndex: []int{0, 1},
		},
		{
			name:      "blank lines between records",
			input:     "\nA 3080, 1, 1, 2, 30, 1\n\n\nB 3090, 1, 1, 2, 30, 0\n",
			wantIndex: []int{0, 1},
		},
		{
			name:      "too few fields dropped",
			input:     "A 3080, 1, 1, 2, 30\nB 3090, 1, 1, 2, 30, 1",
			wantIndex: []int{1},
		},
		{
			name:      "extra fields tolerated",
			input:     "A 3080, 1, 1, 2, 30, 3, extra",
			wantIndex: []int{3},
		},
		{
			name:      "not available value drops line",
			input:     "A 3080, [N/A], 1, 2, 30, 0\nB 3090, 5, 1, 2, 30, 1",
			wantIndex: []int{1},
		},
		{
			name:      "garbage numeric drops line",
			input:     "A, 1, abc, 2, 30, 0",
			wantIndex: []int{},
		},
		{
			name:      "blank numeric drops line",
			input:     "A, 1, , 2, 30, 0",
			wantIndex: []int{},
		},
		{
			name:      "NaN literal drops line",
			input:     "A, NaN, 1, 2, 30, 0",
			wantIndex: []int{},
		},
		{
			name:      "negative index drops line",
			input:     "A, 1, 1, 2, 30, -1",
			wantIndex: []int{},
		},
		{
			name:      "fractional index drops line",
			input:     "A, 1, 1, 2, 30, 1.5",
			wantIndex: []int{},
		},
		{
			name:      "duplicate index keeps first",
			input:     "First 3080, 1, 1, 2, 30, 0\nSecond 3090, 1, 1, 2, 30, 0",
			wantIndex: []int{0},
		},
		{
			name:      "error text from tool yields nothing",
			input:     "No devices were found",
			wantIndex: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := Parse(tt.input)
			require.NotNil(t, samples)

			got := make([]int, 0, len(samples))
			for _, s := range samples {
				got = append(got, s.Index)
			}
			assert.Equal(t, tt.wantIndex, got)
		})
	}
}

func TestParse_DuplicateKeepsFirstOccurrence(t *testing.T) {
	samples := Parse("First 3080, 1, 1, 2, 30, 0\nSecond 3090, 1, 1, 2, 30, 0")
	require.Len(t, samples, 1)
	assert.Equal(t, "First 3080", samples[0].Name)
}

func TestParse_Percentages(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantMem     float64
		wantTemp    float64
		wantTempRaw float64
		wantGPU     float64
	}{
		{"zero total memory", "A, 5, 100, 0, 50, 0", 0, 50, 50, 5},
		{"rounds half up", "A, 5, 1, 8, 50, 0", 13, 50, 50, 5},
		{"hot device clamps percent", "A, 5, 1, 2, 104, 0", 50, 100, 104, 5},
		{"negative temperature clamps to zero", "A, 5, 1, 2, -5, 0", 50, 0, -5, 5},
		{"fractional temperature rounds", "A, 5, 1, 2, 61.6, 0", 50, 62, 61.6, 5},
		{"gpu percent is not clamped", "A, 120, 1, 2, 40, 0", 50, 40, 40, 120},
		{"memory over total is not clamped", "A, 0, 300, 200, 40, 0", 150, 40, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := Parse(tt.line)
			require.Len(t, samples, 1)
			s := samples[0]
			assert.Equal(t, tt.wantMem, s.MemPercent)
			assert.Equal(t, tt.wantTemp, s.TempPercent)
			assert.Equal(t, tt.wantTempRaw, s.TempRawCelsius)
			assert.Equal(t, tt.wantGPU, s.GPUPercent)
		})
	}
}

func TestParse_EmptyNameFallsBack(t *testing.T) {
	samples := Parse(", 5, 1, 2, 40, 3")
	require.Len(t, samples, 1)
	assert.Equal(t, "GPU 3", samples[0].Name)
	assert.Equal(t, "GPU3", samples[0].ShortLabel)
}

func TestShortLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		index int
		want  string
	}{
		{"four digit model", "NVIDIA GeForce RTX 3080", 0, "3080"},
		{"three digit model", "NVIDIA GeForce GT 730", 0, "730"},
		{"ti suffix with space", "NVIDIA GeForce GTX 1080 Ti", 0, "1080 TI"},
		{"ti suffix attached", "NVIDIA GeForce RTX 3080Ti", 0, "3080 TI"},
		{"ti suffix lowercase", "geforce 2080 ti", 0, "2080 TI"},
		{"ti prefix of longer word ignored", "Card 1080 Tiger", 0, "1080"},
		{"first model number wins", "RTX 4090 D 5090", 0, "4090"},
		{"digits glued to letters fall through", "NVIDIA A100-SXM4-40GB", 2, "GPU2"},
		{"any standalone number", "Tesla K 80", 0, "80"},
		{"five digit number falls back to any number", "Model 12345", 0, "12345"},
		{"no digits", "NVIDIA TITAN Xp", 5, "GPU5"},
		{"empty name", "", 1, "GPU1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortLabel(tt.input, tt.index))
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 0.0, Clamp01(-10))
	assert.Equal(t, 0.42, Clamp01(42))
	assert.Equal(t, 1.0, Clamp01(250))
}

func TestDeviceSample_Value(t *testing.T) {
	s := DeviceSample{GPUPercent: 1, MemPercent: 2, TempPercent: 3, TempRawCelsius: 103}

	assert.Equal(t, 1.0, s.Value(MetricGPU))
	assert.Equal(t, 2.0, s.Value(MetricMem))
	assert.Equal(t, 3.0, s.Value(MetricTemp))
	assert.Equal(t, 103.0, s.Value(MetricTempRaw))
	assert.Equal(t, 0.0, s.Value(Metric("power")))
}
