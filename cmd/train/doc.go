/*
Train fits logistic regression on CSV files of a directory.

	train --training_data data/ --reg_rate 0.01

With --tracking_uri (or LOGREG_TRACKING_URI) the training runs inside a tracked run:
reg_rate is logged as a parameter, train_score and test_score as metrics and the
fitted model is saved as the run artifact named model.
*/
package main
