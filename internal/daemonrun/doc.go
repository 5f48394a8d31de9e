// Package daemonrun assembles the long-running liftplan server process: it
// builds the logger, opens storage, constructs the scraper and LLM client, and
// serves HTTP until the process is signalled.
package daemonrun
