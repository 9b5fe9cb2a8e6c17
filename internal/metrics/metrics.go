// Package metrics holds Prometheus instruments that are used across the
// platform.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SiteLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_load_total",
			Help: "Cumulative number of site rows successfully loaded.",
		})

	SiteLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_load_errors_total",
			Help: "Cumulative number of site load errors (not-found excluded).",
		})

	AssemblyCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assembly_cache_hits_total",
			Help: "Public views served from the assembly cache.",
		})

	AssemblyCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assembly_cache_misses_total",
			Help: "Public views assembled from the store.",
		})

	PublishTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publish_total",
			Help: "Cumulative number of publish transitions.",
		})

	UnpublishTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "unpublish_total",
			Help: "Cumulative number of unpublish transitions.",
		})

	GalleryUploadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_upload_total",
			Help: "Cumulative number of gallery blobs committed.",
		})

	GalleryReleaseTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_release_total",
			Help: "Cumulative number of gallery blobs released.",
		})
)

func init() {
	prometheus.MustRegister(
		SiteLoadTotal,
		SiteLoadErrorsTotal,
		AssemblyCacheHitsTotal,
		AssemblyCacheMissesTotal,
		PublishTotal,
		UnpublishTotal,
		GalleryUploadTotal,
		GalleryReleaseTotal,
	)
}
