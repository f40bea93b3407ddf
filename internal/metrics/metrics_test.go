package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ForcedLogouts.WithLabelValues("unauthorized").Inc()
	m.OutboundRequests.WithLabelValues("GET", "2xx").Add(2)

	require.Equal(t, 1.0, testutil.ToFloat64(m.ForcedLogouts.WithLabelValues("unauthorized")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.OutboundRequests.WithLabelValues("GET", "2xx")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	require.Panics(t, func() { New(reg) }, "second registration on the same registry must collide")
}

func TestStatusClass(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2xx", StatusClass(204))
	require.Equal(t, "3xx", StatusClass(304))
	require.Equal(t, "4xx", StatusClass(401))
	require.Equal(t, "5xx", StatusClass(503))
	require.Equal(t, "error", StatusClass(0))
}
