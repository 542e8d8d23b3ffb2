package harness

import (
	"bytes"
	"fmt"
	"text/template"
)

// WorkloadConfig parameterizes the instrumented workload kernel. The kernel
// strides through a buffer so that its hit/miss behavior is sensitive to the
// cache hierarchy under test.
type WorkloadConfig struct {
	ArrayBytes int `yaml:"array_bytes"` // working-set size
	Stride     int `yaml:"stride"`      // bytes between touched elements
	Passes     int `yaml:"passes"`      // ROI sweeps over the buffer
}

// DefaultWorkloadConfig returns a working set that fits L2 but not L1 with
// the walkthrough's cache sizes.
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		ArrayBytes: 1 << 17, // 128 KiB
		Stride:     64,
		Passes:     8,
	}
}

func (c WorkloadConfig) validate() error {
	if c.ArrayBytes <= 0 || c.Stride <= 0 || c.Passes <= 0 {
		return fmt.Errorf("workload config: array_bytes, stride and passes must all be positive (got %d, %d, %d)",
			c.ArrayBytes, c.Stride, c.Passes)
	}
	if c.Stride >= c.ArrayBytes {
		return fmt.Errorf("workload config: stride %d does not fit in array of %d bytes", c.Stride, c.ArrayBytes)
	}
	return nil
}

// workloadTemplate is the instrumented C source. The m5 ops bracket the
// region of interest: the dump+reset pair at ROI entry closes the
// startup/warmup counters as the report's first block, so the dump at ROI
// exit writes the bracketed region as the second block.
var workloadTemplate = template.Must(template.New("workload").Parse(`/* Generated by m5bench. */
#include <stdio.h>
#include <stdlib.h>
#include <string.h>

#include <gem5/m5ops.h>

#define ARRAY_BYTES ({{.ArrayBytes}})
#define STRIDE ({{.Stride}})
#define PASSES ({{.Passes}})

static volatile unsigned char buf[ARRAY_BYTES];

static unsigned long sweep(void)
{
    unsigned long sum = 0;
    for (int pass = 0; pass < PASSES; pass++) {
        for (size_t i = 0; i < ARRAY_BYTES; i += STRIDE) {
            sum += buf[i];
            buf[i] = (unsigned char)(sum);
        }
    }
    return sum;
}

int main(void)
{
    memset((void *)buf, 1, ARRAY_BYTES);

    /* Warmup pass; its counters land in the first statistics block. */
    sweep();

    m5_dump_stats(0, 0);
    m5_reset_stats(0, 0);

    unsigned long sum = sweep();

    m5_dump_stats(0, 0);

    printf("checksum: %lu\n", sum);
    m5_exit(0);
    return 0;
}
`))

// WorkloadSource renders the instrumented C workload.
func WorkloadSource(cfg WorkloadConfig) ([]byte, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := workloadTemplate.Execute(&buf, cfg); err != nil {
		return nil, fmt.Errorf("render workload source: %w", err)
	}
	return buf.Bytes(), nil
}
