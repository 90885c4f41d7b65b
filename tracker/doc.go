/*
Package tracker records training runs: hyper-parameters, metrics and model artifacts.

Runs are kept in a sqlite database addressed by a tracking URI, artifacts are files
under the artifact root, one directory per run. A run is append-only, it's started,
logged into and ended exactly once. Use WithRun to be sure a failed training doesn't
leave the run in RUNNING state.
*/
package tracker
