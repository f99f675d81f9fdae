// Package metrics exports the state of a bill ledger as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

type Collector struct {
	bills   *prometheus.GaugeVec
	amounts *prometheus.GaugeVec
	updates prometheus.Counter
}

func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		bills: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "contas",
			Name:      "bills",
			Help:      "Number of bills in the ledger by status.",
		}, []string{"status"}),
		amounts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "contas",
			Name:      "bills_amount",
			Help:      "Sum of bill amounts in the ledger by status.",
		}, []string{"status"}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contas",
			Name:      "ledger_snapshots_total",
			Help:      "Snapshots published by the ledger.",
		}),
	}

	for _, col := range []prometheus.Collector{c.bills, c.amounts, c.updates} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Watch subscribes to the ledger and keeps the gauges current. The returned
// function stops watching.
func (c *Collector) Watch(l *bill.Ledger) func() {
	return l.Subscribe(c.Observe)
}

func (c *Collector) Observe(snap *bill.Snapshot) {
	bills := snap.Bills()

	counts := map[bill.Status]int{
		bill.StatusPending: 0,
		bill.StatusPaid:    0,
		bill.StatusOverdue: 0,
	}
	for _, b := range bills {
		counts[b.Status]++
	}

	for status, n := range counts {
		c.bills.WithLabelValues(string(status)).Set(float64(n))
	}

	sum := bill.Summarize(bills)
	c.amounts.WithLabelValues(string(bill.StatusPending)).Set(sum.Pending)
	c.amounts.WithLabelValues(string(bill.StatusPaid)).Set(sum.Paid)
	c.amounts.WithLabelValues(string(bill.StatusOverdue)).Set(sum.Overdue)

	c.updates.Inc()
}
