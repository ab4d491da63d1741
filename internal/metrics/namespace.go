package metrics

// Namespace prefixes every metric the service exports.
const Namespace = "synthsearch"
